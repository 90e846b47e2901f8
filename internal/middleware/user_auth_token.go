package middleware

import (
	"strings"

	"github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserAuthTokenWithConfig 用户 Token 认证中间件（使用注入的 TokenManager）
// Token 由外部身份系统签发，这里只校验签名与有效期
func UserAuthTokenWithConfig(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		response := app.NewResponse(c)

		if s := c.GetHeader("Authorization"); len(s) != 0 {
			token = trimBearer(s)
		} else if s, exist := c.GetQuery("authorization"); exist {
			token = s
		} else if s = c.GetHeader("Token"); len(s) != 0 {
			token = s
		} else if s, exist := c.GetQuery("token"); exist {
			token = s
		}

		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		if err := app.SetTokenToContext(c, tm, token); err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}

		c.Next()
	}
}

func trimBearer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
