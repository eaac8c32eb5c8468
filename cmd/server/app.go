/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2025-10-21 18:02:41
 * @LastEditors: 安知鱼
 */
// anheyu-atelier/cmd/server/app.go
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-atelier/internal/app/listener"
	"github.com/anzhiyu-c/anheyu-atelier/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-atelier/internal/app/task"
	"github.com/anzhiyu-c/anheyu-atelier/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-atelier/internal/infra/persistence/sqlstore"
	"github.com/anzhiyu-c/anheyu-atelier/internal/infra/router"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/utils"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/config"
	cms_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/cms"
	contact_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/contact"
	public_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/public"
	version_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/version"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/cms"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/contact"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/utility"
)

const (
	shutdownTimeout        = 15 * time.Second
	seedTimeout            = 30 * time.Second
	migrationRetryInterval = 30 * time.Second
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg         *config.Config
	engine      *gin.Engine
	scheduler   *task.Scheduler
	sqlDB       *sql.DB
	appVersion  string
	store       *cms.Store
	snapshotSvc *cms.CachedLoader
	cacheSvc    utility.CacheService
	eventBus    *event.EventBus
	mw          *middleware.Middleware
	// stopBackground 取消数据库恢复等后台工作
	stopBackground context.CancelFunc
}

func (a *App) PrintBanner() {
	banner := `

       █████╗ ████████╗███████╗██╗     ██╗███████╗██████╗
      ██╔══██╗╚══██╔══╝██╔════╝██║     ██║██╔════╝██╔══██╗
      ███████║   ██║   █████╗  ██║     ██║█████╗  ██████╔╝
      ██╔══██║   ██║   ██╔══╝  ██║     ██║██╔══╝  ██╔══██╗
      ██║  ██║   ██║   ███████╗███████╗██║███████╗██║  ██║
      ╚═╝  ╚═╝   ╚═╝   ╚══════╝╚══════╝╚═╝╚══════╝╚═╝  ╚═╝

`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Printf(" Anheyu Atelier: %s", version.GetVersionString())
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	appVersion := version.GetVersion()

	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, sqlDialect, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}
	// 数据库不可用时不退出：公开页面使用默认内容，后台编辑等数据库恢复后再开放
	migrator := database.NewMigrationService(sqlDB, sqlDialect)
	schemaReady := true
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Printf("⚠️  数据库迁移失败，将以默认内容启动并在后台重试: %v", err)
		schemaReady = false
	}

	// Redis 不可用时降级到内存缓存
	redisClient := database.NewRedisClient(context.Background(), cfg)
	cacheSvc, cacheType := utility.NewCacheServiceWithFallback(redisClient)
	log.Printf("🔄 快照缓存与留言限额使用 %s", cacheType)

	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()
		utility.StopCacheService(cacheSvc)
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	eventBus := event.NewEventBus()

	// --- Phase 3: ID 编码器 ---
	if err := idgen.InitSqidsEncoderWithSeed(cfg.GetString(config.KeyIDSeed)); err != nil {
		return nil, cleanup, fmt.Errorf("初始化 ID 编码器失败: %w", err)
	}
	log.Println("✅ ID 编码器初始化成功")

	// --- Phase 4: 初始化数据仓库层 ---
	snapshotRepo := sqlstore.NewSnapshotRepository(sqlDB, sqlDialect)
	contactRepo := sqlstore.NewContactSubmissionRepository(sqlDB, sqlDialect)

	siteID := cfg.GetString(config.KeyCmsSiteID)
	contentRepo := cms.NewContentRepository(snapshotRepo, siteID)

	// --- Phase 5: 载入文档并初始化业务逻辑层 ---
	serverLoader := cms.NewServerLoader(snapshotRepo, siteID)
	storeOpts := []cms.Option{
		cms.WithEventBus(eventBus),
		cms.WithSaveTimeout(time.Duration(cfg.GetInt(config.KeyCmsSaveTimeout))*time.Second),
	}
	if schemaReady {
		seedCtx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		storeOpts = append(storeOpts, cms.WithInitialData(serverLoader.Load(seedCtx)))
		cancel()
	}
	// 没有初始文档时存储保持 loading，后台修改返回 503，避免默认内容覆盖数据库中的文档
	store := cms.NewStore(contentRepo, storeOpts...)

	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	closeResources := cleanup
	cleanup = func() {
		stopBackground()
		closeResources()
	}
	if !schemaReady {
		go migrator.RetryUntilReady(backgroundCtx, migrationRetryInterval, func(ctx context.Context) {
			if err := store.Load(ctx); err != nil {
				log.Printf("⚠️  数据库恢复后载入文档失败: %v", err)
				return
			}
			log.Println("✅ 数据库已恢复，后台编辑已开放")
		})
	}
	snapshotSvc := cms.NewCachedLoader(serverLoader, cacheSvc, time.Duration(cfg.GetInt(config.KeyCmsCacheTTL))*time.Second)
	contactSvc := contact.NewService(contactRepo, cacheSvc, eventBus)

	// --- Phase 6: 事件监听与定时任务 ---
	listener.NewCmsCacheListener(eventBus, snapshotSvc)

	var scheduler *task.Scheduler
	if cfg.GetBool(config.KeyCmsAutoExpositionStatus) {
		loc, err := utils.LoadLocation(cfg.GetString(config.KeyCmsTimezone))
		if err != nil {
			return nil, cleanup, err
		}
		scheduler = task.NewScheduler(store, loc)
		if err := scheduler.RegisterExpositionStatusJob(cfg.GetString(config.KeyCmsExpositionStatusSpec)); err != nil {
			return nil, cleanup, fmt.Errorf("注册展览状态任务失败: %w", err)
		}
	}

	// --- Phase 7: 初始化表现层 ---
	secret, err := jwtSecret(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	mw := middleware.NewMiddleware(secret)

	appRouter := router.NewRouter(
		public_handler.NewPublicHandler(snapshotSvc),
		cms_handler.NewHandler(store),
		contact_handler.NewHandler(contactSvc),
		version_handler.NewHandler(),
		mw,
		router.ContactLimit{
			RequestsPerMinute: cfg.GetInt(config.KeyContactRateLimit),
			Burst:             cfg.GetInt(config.KeyContactRateBurst),
		},
	)

	// --- Phase 8: 配置 Gin 引擎 ---
	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
		log.Println("运行模式: Debug (Gin 将打印详细路由日志)")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("运行模式: Release (Gin 启动日志已禁用)")
	}

	engine := gin.Default()
	if err := engine.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		return nil, cleanup, fmt.Errorf("设置信任代理失败: %w", err)
	}
	engine.ForwardedByClientIP = true
	engine.Use(middleware.Cors())
	appRouter.Setup(engine)

	app := &App{
		cfg:         cfg,
		engine:      engine,
		scheduler:   scheduler,
		sqlDB:       sqlDB,
		appVersion:  appVersion,
		store:       store,
		snapshotSvc: snapshotSvc,
		cacheSvc:    cacheSvc,
		eventBus:    eventBus,
		mw:          mw,

		stopBackground: stopBackground,
	}
	return app, cleanup, nil
}

// jwtSecret 未配置密钥时生成一个临时密钥，重启后已签发的 Token 全部失效
func jwtSecret(cfg *config.Config) ([]byte, error) {
	if secret := cfg.GetString(config.KeyAuthJWTSecret); secret != "" {
		return []byte(secret), nil
	}
	generated, err := idgen.GenerateRandomSeed()
	if err != nil {
		return nil, fmt.Errorf("生成临时 JWT 密钥失败: %w", err)
	}
	log.Println("⚠️  未配置 Auth.JWTSecret，已生成临时密钥，重启后 Token 将失效")
	return []byte(generated), nil
}

// IssueAdminToken 使用配置中的密钥为指定邮箱签发管理员 Token
func IssueAdminToken(email string) (string, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return "", fmt.Errorf("加载配置失败: %w", err)
	}
	secret := cfg.GetString(config.KeyAuthJWTSecret)
	if secret == "" {
		return "", errors.New("签发 Token 需要在配置中设置 Auth.JWTSecret")
	}
	return auth.GenerateToken(auth.TokenOptions{
		UserID: email,
		Email:  email,
		Role:   auth.RoleAdmin,
		Issuer: cfg.GetString(config.KeyAuthIssuer),
		TTL:    time.Duration(cfg.GetInt(config.KeyAuthTokenTTL)) * time.Hour,
	}, []byte(secret))
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) DB() *sql.DB {
	return a.sqlDB
}

// Store 返回后台编辑使用的文档存储
func (a *App) Store() *cms.Store {
	return a.store
}

func (a *App) CacheService() utility.CacheService {
	return a.cacheSvc
}

func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

func (a *App) Middleware() *middleware.Middleware {
	return a.mw
}

func (a *App) Version() string {
	return a.appVersion
}

// Run 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func (a *App) Run() error {
	if a.scheduler != nil {
		a.scheduler.Start()
	}

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: a.engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("收到退出信号，正在关闭 HTTP 服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Stop 按顺序停止定时任务、等待后台保存完成并关闭事件总线
func (a *App) Stop() {
	if a.stopBackground != nil {
		a.stopBackground()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
	if a.store != nil {
		a.store.Wait()
		log.Println("后台保存已全部完成。")
	}
	if a.eventBus != nil {
		a.eventBus.Shutdown()
	}
}
