// Package routers 组装公开与私有 HTTP 路由
package routers

import (
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/app"
	"github.com/haierkeys/ecrit-note-service/internal/middleware"
	"github.com/haierkeys/ecrit-note-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// sharedRoute 匿名分享接口的路由模板，同时作为限流规则键
const sharedRoute = "/api/shared/:id"

// newShareLimiter 每个客户端 IP 每分钟 perMinute 次，perMinute <= 0 时不限流
func newShareLimiter(perMinute int) limiter.Face {
	l := limiter.NewIPLimiter(limiter.DefaultMaxClients)
	if perMinute <= 0 {
		return l
	}
	return l.AddBuckets(limiter.BucketRule{
		Key:          sharedRoute,
		FillInterval: time.Minute / time.Duration(perMinute),
		Capacity:     int64(perMinute),
		Quantum:      1,
	})
}

// noteWriteRoutes 笔记写接口的路由模板
var noteWriteRoutes = []string{"/api/notes", "/api/notes/:id", "/api/notes/:id/share"}

// newWriteLimiter 每个用户在每个写路由上每秒 perSecond 次，perSecond <= 0 时不限流
func newWriteLimiter(perSecond int) limiter.Face {
	l := limiter.NewUserLimiter(limiter.DefaultMaxClients, pkgapp.GetUID)
	if perSecond <= 0 {
		return l
	}
	rules := make([]limiter.BucketRule, 0, len(noteWriteRoutes))
	for _, route := range noteWriteRoutes {
		rules = append(rules, limiter.BucketRule{
			Key:          route,
			FillInterval: time.Second / time.Duration(perSecond),
			Capacity:     int64(perSecond),
			Quantum:      1,
		})
	}
	return l.AddBuckets(rules...)
}

// NewRouter 创建公开 API 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(lg))
	r.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
	r.Use(middleware.AccessLogWithLogger(lg))
	r.Use(middleware.Cors())

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)
		shareHandler := api_router.NewShareHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		// 无需认证
		api.GET("/health", healthHandler.Check)
		api.GET("/version", healthHandler.ServerVersion)

		shared := api.Group("", middleware.RateLimiter(newShareLimiter(cfg.Security.ShareRateLimit)))
		shared.GET(sharedRoute[len("/api"):], shareHandler.Peek)
		shared.POST(sharedRoute[len("/api"):], shareHandler.Unlock)

		// 需要用户 Token
		notes := api.Group("/notes", middleware.UserAuthTokenWithConfig(appContainer.TokenManager))
		writeLimit := middleware.RateLimiter(newWriteLimiter(cfg.Security.WriteRateLimit))
		notes.GET("", noteHandler.List)
		notes.POST("", writeLimit, noteHandler.Create)
		notes.GET("/slug/:slug", noteHandler.GetBySlug)
		notes.GET("/:id", noteHandler.Get)
		notes.PATCH("/:id", writeLimit, noteHandler.Update)
		notes.DELETE("/:id", writeLimit, noteHandler.Delete)
		notes.GET("/:id/share", shareHandler.Link)
		notes.PATCH("/:id/share", writeLimit, shareHandler.SetSharing)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
