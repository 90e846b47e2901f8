package api_router

import (
	"context"
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/app"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a), startTime: time.Now()}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string  `json:"status"`   // "healthy" 或 "unhealthy"
	Version  string  `json:"version"`  // 服务版本号
	Uptime   float64 `json:"uptime"`   // 运行时间（秒）
	Database string  `json:"database"` // "connected" 或 "error"
	Cache    string  `json:"cache"`    // 缓存后端名称
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.startTime).Seconds(),
		Database: "connected",
		Cache:    h.App.Cache.Store().Name(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// 检查数据库连接
	if err := h.App.DB.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		response.Status = "unhealthy"
		response.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorDBQuery.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}

// ServerVersion 版本信息
// @Summary 服务端版本
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=pkgapp.VersionInfo} "成功"
// @Router /api/version [get]
func (h *HealthHandler) ServerVersion(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(h.App.Version()))
}
