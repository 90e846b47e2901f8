package routers

import (
	"expvar"
	"net/http"
	"net/http/pprof"

	"github.com/haierkeys/ecrit-note-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// DefaultPrefix url prefix of pprof
	DefaultPrefix = "/debug/pprof"
)

// NewPrivateRouterWithLogger 创建私有路由：prometheus 指标、expvar，debug 模式下额外开放 pprof
// privateToken 非空时需要携带该令牌访问
func NewPrivateRouterWithLogger(runMode string, privateToken string, logger *zap.Logger) *gin.Engine {

	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))
	r.Use(middleware.SimpleAuthTokenWithConfig(privateToken))

	// prom监控
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))

	if runMode == gin.DebugMode {
		p := r.Group(DefaultPrefix)
		{
			p.GET("/", pprofHandler(pprof.Index))
			p.GET("/cmdline", pprofHandler(pprof.Cmdline))
			p.GET("/profile", pprofHandler(pprof.Profile))
			p.POST("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/trace", pprofHandler(pprof.Trace))
			for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
				p.GET("/"+name, pprofHandler(pprof.Handler(name).ServeHTTP))
			}
		}
	}

	r.NoRoute(middleware.NoFound())

	return r
}

func pprofHandler(h http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
