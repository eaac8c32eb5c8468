/*
 * @Description: 统一配置管理 (终极健壮版，手动加载)
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-09-12 09:48:31
 * @LastEditors: 安知鱼
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

// DefaultFilePath 是默认的配置文件路径
const DefaultFilePath = "data/conf.ini"

// 定义所有已知的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug, KeyIDSeed,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyCmsSiteID, KeyCmsCacheTTL, KeyCmsSaveTimeout, KeyCmsAutoExpositionStatus, KeyCmsExpositionStatusSpec, KeyCmsTimezone,
	KeyAuthJWTSecret, KeyAuthIssuer, KeyAuthTokenTTL,
	KeyContactRateLimit, KeyContactRateBurst,
}

const (
	KeyServerPort    = "System.Port"
	KeyServerDebug   = "System.Debug"
	KeyIDSeed        = "System.IDSeed"
	KeyDBType        = "Database.Type"
	KeyDBHost        = "Database.Host"
	KeyDBPort        = "Database.Port"
	KeyDBUser        = "Database.User"
	KeyDBPassword    = "Database.Password"
	KeyDBName        = "Database.Name"
	KeyDBDebug       = "Database.Debug"
	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	// CMS 相关
	KeyCmsSiteID               = "Cms.SiteID"
	KeyCmsCacheTTL             = "Cms.CacheTTL"    // 秒
	KeyCmsSaveTimeout          = "Cms.SaveTimeout" // 秒
	KeyCmsAutoExpositionStatus = "Cms.AutoExpositionStatus"
	KeyCmsExpositionStatusSpec = "Cms.ExpositionStatusSpec"
	KeyCmsTimezone             = "Cms.Timezone"

	// 认证
	KeyAuthJWTSecret = "Auth.JWTSecret"
	KeyAuthIssuer    = "Auth.Issuer"
	KeyAuthTokenTTL  = "Auth.TokenTTL" // 小时

	// 联系表单限流
	KeyContactRateLimit = "Contact.RateLimit" // 每分钟请求数
	KeyContactRateBurst = "Contact.RateBurst"
)

// defaults 是未在文件与环境变量中出现时使用的内部默认值
var defaults = map[string]any{
	KeyServerPort:              "8091",
	KeyCmsSiteID:               "default-site",
	KeyCmsCacheTTL:             60,
	KeyCmsSaveTimeout:          30,
	KeyCmsAutoExpositionStatus: false,
	KeyCmsExpositionStatusSpec: "@daily",
	KeyCmsTimezone:             "Europe/Bucharest",
	KeyAuthIssuer:              "anheyu-atelier",
	KeyAuthTokenTTL:            168,
	KeyContactRateLimit:        5,
	KeyContactRateBurst:        3,
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 从默认路径加载配置，文件不存在时自动创建
func NewConfig() (*Config, error) {
	return load(DefaultFilePath, true)
}

// NewConfigFromFile 从指定路径加载配置，文件不存在时不会创建
func NewConfigFromFile(filePath string) (*Config, error) {
	return load(filePath, false)
}

func load(filePath string, createIfMissing bool) (*Config, error) {
	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}

	// --- 步骤 1: 使用 go-ini 从文件加载配置 (作为默认值) ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			// 如果文件存在但格式错误
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
		iniCfg = nil
		if createIfMissing {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
					iniCfg = nil
				}
			}
		}
	}

	// 如果文件成功加载，则将其中的值全部设置到 Viper 中
	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				// 构建 Viper 使用的 key，例如 "Database.Host"
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				// 特殊处理默认分区 "DEFAULT"
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值不覆盖内部默认值
				if key.Value() == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了默认配置。", filePath)
	}

	// --- 步骤 2: 手动检查并覆盖环境变量 ---
	envReplacer := strings.NewReplacer(".", "_")
	envPrefix := "ATELIER"

	for _, key := range allKeys {
		// 构建环境变量名，例如 ATELIER_DATABASE_HOST
		envVarName := fmt.Sprintf("%s_%s", envPrefix, envReplacer.Replace(strings.ToUpper(key)))

		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// Set 覆盖单个配置项，主要用于测试与命令行参数
func (c *Config) Set(key string, value any) {
	c.vp.Set(key, value)
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	// 默认配置内容（使用 SQLite 作为默认数据库）
	defaultConfig := `[System]
Port = 8091
Debug = false
IDSeed =

[Database]
Type = sqlite
Name = anheyu_atelier.db
Debug = false

# Redis 配置（可选）
# 如果不配置或留空 Addr，系统将自动使用内存缓存
[Redis]
Addr =
Password =
DB = 0

[Cms]
SiteID = default-site
CacheTTL = 60
SaveTimeout = 30
AutoExpositionStatus = false
ExpositionStatusSpec = @daily
Timezone = Europe/Bucharest

# 生产环境务必修改 JWTSecret
[Auth]
JWTSecret =
Issuer = anheyu-atelier
TokenTTL = 168

[Contact]
RateLimit = 5
RateBurst = 3
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}
