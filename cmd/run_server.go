package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	internalApp "github.com/haierkeys/ecrit-note-service/internal/app"
	"github.com/haierkeys/ecrit-note-service/internal/dao"
	"github.com/haierkeys/ecrit-note-service/internal/routers"
	"github.com/haierkeys/ecrit-note-service/internal/task"
	"github.com/haierkeys/ecrit-note-service/pkg/logger"
	"github.com/haierkeys/ecrit-note-service/pkg/safe_close"
	"github.com/haierkeys/ecrit-note-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultSecretKeys 需要告警的默认密钥
var defaultSecretKeys = []string{
	defaultAuthTokenPlaceholder,
	"",
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger             // 日志对象
	config            *internalApp.AppConfig  // 应用配置（注入的依赖）
	db                *gorm.DB                // 数据库连接
	ut                *ut.UniversalTranslator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

// checkSecurityConfigWithConfig 检查安全配置，如果使用默认密钥则输出警告
func checkSecurityConfigWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	for _, key := range defaultSecretKeys {
		if cfg.Security.AuthTokenKey != key {
			continue
		}
		fmt.Println()
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("SECURITY WARNING: Using default secret key!")
		fmt.Println()
		fmt.Printf("Set 'security.auth-token-key' in config.yaml or the %s environment variable\n", internalApp.EnvAuthTokenKey)
		fmt.Println("Generate a secure key with:")
		fmt.Println("  openssl rand -base64 32")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println()

		lg.Warn("Using default secret key - please change security.auth-token-key")
		return
	}
}

func NewServer(runEnv *runFlags) (*Server, error) {

	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = ":" + strings.TrimPrefix(runEnv.port, ":")
	}

	// 确定运行模式
	runMode := runEnv.runMode
	if len(runMode) <= 0 {
		runMode = appConfig.Server.RunMode
	}
	if len(runMode) > 0 {
		gin.SetMode(runMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	appConfig.Server.RunMode = gin.Mode()

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	// 初始化日志器（使用注入的配置）
	if err := initLoggerWithConfig(s, appConfig); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	checkSecurityConfigWithConfig(appConfig, s.logger)

	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	db, err := dao.NewDBEngineWithConfig(*appConfig.DaoDatabaseConfig(), s.logger)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	s.app, err = internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, fmt.Errorf("initApp: %w", err)
	}

	// 初始化验证器
	uni, err := initValidatorWithLogger(s.logger)
	if err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}
	s.ut = uni

	// 启动调度器
	initScheduler(s)

	s.logger.Warn(fmt.Sprintf("%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve(s.httpServer, "api service")
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, appConfig.Security.PrivateToken, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve(s.privateHttpServer, "private api service")
	}

	// 注册 App Container 的优雅关闭
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal

		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}
		_ = s.logger.Sync()
	})

	return s, nil
}

// serve 启动 HTTP 服务，收到关闭信号后优雅停止；监听失败会触发整体关闭
func (s *Server) serve(srv *http.Server, name string) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error(name+" err", zap.Error(err))
				s.sc.SendCloseSignal(err)
			}
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

func initScheduler(s *Server) {
	// 创建任务管理器
	manager := task.NewManager(s.logger, s.sc, s.app)

	// 注册所有任务
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}

	// 启动任务调度器
	manager.Start()
}

// initLoggerWithConfig 初始化日志器（使用注入的配置）
func initLoggerWithConfig(s *Server, cfg *internalApp.AppConfig) error {
	lg, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	s.logger = lg
	return nil
}

// initValidatorWithLogger 初始化验证器，返回 UniversalTranslator
func initValidatorWithLogger(lg *zap.Logger) (*ut.UniversalTranslator, error) {
	binding.Validator = validator.NewCustomValidator()
	validator.RegisterCustom()

	uni, err := validator.NewTranslator()
	if err != nil {
		lg.Error("register validator translations failed", zap.Error(err))
		return nil, err
	}
	return uni, nil
}

// initStorageWithConfig 初始化日志与数据库目录
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{
		filepath.Dir(cfg.Log.File),
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path != ":memory:" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}
