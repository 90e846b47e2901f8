package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"
	"github.com/haierkeys/ecrit-note-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
// panic 详情只写入日志，响应中只有通用的内部错误
func RecoveryWithLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
				zap.String("router", c.Request.URL.Path),
				zap.String(logger.FieldMethod, c.Request.Method),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", c.ClientIP()),
				zap.String("user-agent", c.Request.UserAgent()),
				zap.String("stack", string(debug.Stack())),
			}
			if err, ok := rec.(error); ok {
				lg.Error("Recovered from panic", append(fields, zap.Error(err))...)
			} else {
				lg.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", fmt.Sprintf("%v", rec)))...)
			}

			app.NewResponse(c).ToResponse(code.ErrorServerInternal)
			c.Abort()
		}()

		c.Next()
	}
}
