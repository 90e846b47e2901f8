// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/ecrit-note-service/internal/app"
	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/internal/middleware"
	"github.com/haierkeys/ecrit-note-service/pkg/logger"

	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录业务错误；调用方可处理的领域错误记为 Warn，其余记为 Error
func (h *Handler) logError(ctx context.Context, op string, err error) {
	fields := []zap.Field{
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
		zap.Error(err),
	}
	var upstream *domain.UpstreamError
	if domain.IsDomainError(err) && !errors.As(err, &upstream) {
		h.App.Logger().Warn(op, fields...)
		return
	}
	h.App.Logger().Error(op, fields...)
}
