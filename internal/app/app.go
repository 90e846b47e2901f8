// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/dao"
	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/internal/service"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/cache"
	"github.com/haierkeys/ecrit-note-service/pkg/util"
	"github.com/haierkeys/ecrit-note-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	writeQueueMgr *writequeue.Manager

	// 缓存
	cacheStore cache.Store
	Cache      *cache.Coordinator

	// Repository 层
	NoteRepo domain.NoteRepository

	// Service 层
	NoteService  service.NoteService
	ShareService service.ShareService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Write Queue Manager（SQLite 下按用户串行化写入）
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(cfg.DaoDatabaseConfig()),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
	)

	// 初始化缓存
	store, err := cache.NewStore(cfg.GetCacheStoreConfig())
	if err != nil {
		return nil, err
	}
	a.cacheStore = store
	a.Cache = cache.NewCoordinator(store,
		cache.WithLogger(logger),
		cache.WithOpTimeout(util.ParseDurationOr(cfg.Cache.OpTimeout, cache.DefaultOpTimeout)),
	)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    cfg.Security.TokenIssuer,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := cfg.ServiceConfig()

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, a.Cache, logger, svcConfig)
	a.ShareService = service.NewShareService(a.NoteRepo, a.Cache, logger, svcConfig)

	logger.Info("App container initialized successfully",
		zap.String("cacheDriver", store.Name()),
		zap.String("databaseType", cfg.Database.Type),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// DaoDatabaseConfig 转换为 DAO 层使用的数据库配置
func (c *AppConfig) DaoDatabaseConfig() *dao.DatabaseConfig {
	return &dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// ServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) ServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		Cache: service.CacheServiceConfig{
			NoteTTL:   util.ParseDurationOr(c.Cache.NoteTTL, 10*time.Minute),
			ListTTL:   util.ParseDurationOr(c.Cache.ListTTL, 5*time.Minute),
			SharedTTL: util.ParseDurationOr(c.Cache.SharedTTL, 5*time.Minute),
		},
		Share: service.ShareServiceConfig{
			PublicURL: c.Server.PublicURL,
		},
	}
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if closer, ok := a.cacheStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("cache store close error", zap.Error(err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// CacheSweeper 返回支持主动清理过期条目的缓存后端，redis 等自带过期的后端返回 nil
func (a *App) CacheSweeper() cache.Sweeper {
	if s, ok := a.cacheStore.(cache.Sweeper); ok {
		return s
	}
	return nil
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Write Queue Manager -> 后台操作 -> 缓存与数据库
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		} else {
			a.logger.Info("write queue manager shutdown completed")
		}
	}

	// 2. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 3. 关闭缓存与数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
