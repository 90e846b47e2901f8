package middleware

import (
	"crypto/subtle"

	"github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// SimpleAuthTokenWithConfig 简单 Token 认证中间件（使用注入的配置），用于私有路由
// authToken 为空时不做校验
func SimpleAuthTokenWithConfig(authToken string) gin.HandlerFunc {
	return func(c *gin.Context) {

		if authToken == "" {
			c.Next()
			return
		}

		response := app.NewResponse(c)

		var token string

		if s, exist := c.GetQuery("authorization"); exist {
			token = s
		} else if s = c.GetHeader("Authorization"); len(s) != 0 {
			token = trimBearer(s)
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(authToken)) != 1 {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Next()
	}
}
