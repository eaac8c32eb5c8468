/*
 * @Description: Redis 连接，用于站点快照缓存与留言限额计数
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2025-09-19 15:20:44
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/config"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// RedisOptions 从配置中读取连接参数。未配置地址时返回 nil, nil。
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	addr := strings.TrimSpace(cfg.GetString(config.KeyRedisAddr))
	if addr == "" {
		return nil, nil
	}

	db := 0
	if raw := strings.TrimSpace(cfg.GetString(config.KeyRedisDB)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("无效的 Redis.DB 值 '%s'", raw)
		}
		db = n
	}

	return &redis.Options{
		Addr:     addr,
		Password: cfg.GetString(config.KeyRedisPassword),
		DB:       db,
	}, nil
}

// NewRedisClient 返回可用的 Redis 客户端。
// 未配置、配置无效或连接失败时返回 nil，快照缓存与限额计数会改用进程内存。
func NewRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	opts, err := RedisOptions(cfg)
	if err != nil {
		log.Printf("⚠️  %v，快照缓存将使用内存", err)
		return nil
	}
	if opts == nil {
		log.Println("⚠️  Redis 地址未配置，快照缓存将使用内存")
		return nil
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️  连接 Redis (%s, DB %d) 失败: %v，快照缓存将使用内存", opts.Addr, opts.DB, err)
		rdb.Close()
		return nil
	}

	log.Printf("✅ 快照缓存使用 Redis (%s, DB %d)", opts.Addr, opts.DB)
	return rdb
}
