package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cors 跨域处理；匿名分享页与编辑器可能部署在不同域名
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Lang, X-Share-Password, X-Trace-ID")
			c.Header("Access-Control-Expose-Headers", "X-Trace-ID, X-App-Version")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
