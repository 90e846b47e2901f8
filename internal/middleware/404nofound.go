package middleware

import (
	"github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound answers unmatched routes with the JSON envelope instead of gin's plain text
// NoFound 以统一响应结构返回未匹配的路由，details 中包含请求方法与路径
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFoundAPI.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
