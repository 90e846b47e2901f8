// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoteNotFound covers both absent notes and notes owned by someone else
// ErrNoteNotFound 同时表示笔记不存在与笔记不属于当前用户，两者对调用方不可区分
var ErrNoteNotFound = errors.New("note not found")

// ValidationError malformed input, message names the violated constraint
// ValidationError 输入不合法，消息中包含被违反的约束
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Rule
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Rule)
}

// NewValidationError 创建校验错误
func NewValidationError(field, rule string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule}
}

// ConflictError (owner, slug) already taken
// ConflictError 同一用户下 slug 已被占用
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slug %q already exists", e.Slug)
}

// AuthDeniedError missing or wrong share password, never says which note or why
// AuthDeniedError 分享密码缺失或错误，不透露笔记是否存在
type AuthDeniedError struct {
	RequiresPassword bool
}

func (e *AuthDeniedError) Error() string {
	if e.RequiresPassword {
		return "password required"
	}
	return "invalid password"
}

// UpstreamError storage failure, surfaced as a generic internal error
// UpstreamError 存储层故障，对外表现为通用的内部错误
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Cause.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Upstream wraps err unless it is nil or already a domain error
// Upstream 包装存储错误；nil 与已是领域错误的值原样返回
func Upstream(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return &UpstreamError{Op: op, Cause: err}
}

// IsDomainError 是否为调用方可处理的领域错误
func IsDomainError(err error) bool {
	var (
		ve *ValidationError
		ce *ConflictError
		ae *AuthDeniedError
		ue *UpstreamError
	)
	return errors.Is(err, ErrNoteNotFound) ||
		errors.As(err, &ve) ||
		errors.As(err, &ce) ||
		errors.As(err, &ae) ||
		errors.As(err, &ue)
}

// IsUniqueViolation recognizes unique index violations from sqlite, mysql and postgres drivers
// IsUniqueViolation 识别 sqlite、mysql、postgres 驱动返回的唯一索引冲突
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
