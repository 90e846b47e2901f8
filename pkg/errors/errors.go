package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/internal/middleware"
	"github.com/haierkeys/ecrit-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 始终为 false，与成功响应的结构保持一致
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// Data 附加数据（可选），例如 {"requiresPassword": true}
	Data interface{} `json:"data,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// HTTPStatus 响应状态码（不序列化到JSON）
	HTTPStatus int `json:"-"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Lang.GetMessage(),
		Details:    c.Details(),
		Data:       c.Data(),
		HTTPStatus: c.StatusCode(),
		Cause:      cause,
		Timestamp:  time.Now(),
	}
}

// FromError maps an error from the service layer to its response code
// FromError 将业务层错误映射为响应码；存储错误与未知错误不暴露内部信息
func FromError(err error) *AppError {
	var (
		appErr   *AppError
		codeErr  *code.Code
		valErr   *domain.ValidationError
		conflict *domain.ConflictError
		denied   *domain.AuthDeniedError
		upstream *domain.UpstreamError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &codeErr):
		return NewAppError(codeErr, err)
	case errors.Is(err, domain.ErrNoteNotFound):
		return NewAppError(code.ErrorNoteNotFound, err)
	case errors.As(err, &valErr):
		return NewAppError(code.ErrorInvalidParams.WithDetails(valErr.Error()), err)
	case errors.As(err, &conflict):
		return NewAppError(code.ErrorNoteSlugConflict.WithData(gin.H{"slug": conflict.Slug}), err)
	case errors.As(err, &denied):
		// 缺失与错误的密码都提示需要密码，仅响应码不同
		if denied.RequiresPassword {
			return NewAppError(code.ErrorSharePasswordNeeded.WithData(gin.H{"requiresPassword": true}), err)
		}
		return NewAppError(code.ErrorSharePasswordWrong.WithData(gin.H{"requiresPassword": true}), err)
	case errors.As(err, &upstream):
		return NewAppError(code.ErrorDBQuery, err)
	}
	return NewAppError(code.ErrorServerInternal, err)
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err)
	appErr.TraceID = middleware.GetTraceIDFromGin(c)

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.Set("status_code", status)
	c.JSON(status, appErr)
}
