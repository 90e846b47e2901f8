// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/ecrit-note-service/pkg/timex"
)

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Size        int64      `json:"size"`
	Public      bool       `json:"public"`
	HasPassword bool       `json:"hasPassword"`
	ShareURL    *string    `json:"shareUrl,omitempty"`
	CreatedAt   timex.Time `json:"createdAt"`
	UpdatedAt   timex.Time `json:"updatedAt"`
}

// NoteSummaryDTO Note DTO without content, used by listings
// NoteSummaryDTO 不包含内容的笔记 DTO，用于列表
type NoteSummaryDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Size        int64      `json:"size"`
	Public      bool       `json:"public"`
	HasPassword bool       `json:"hasPassword"`
	CreatedAt   timex.Time `json:"createdAt"`
	UpdatedAt   timex.Time `json:"updatedAt"`
}

// NotePageDTO one page of summaries plus the total under the same filter
// NotePageDTO 一页摘要以及同一过滤条件下的总数
type NotePageDTO struct {
	Items []*NoteSummaryDTO `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// NoteCreateRequest Request parameters for creating a note
// NoteCreateRequest 创建笔记的请求参数
type NoteCreateRequest struct {
	Title   string `json:"title" form:"title" binding:"required,max=255"`
	Slug    string `json:"slug" form:"slug" binding:"omitempty,max=255,slug"` // Derived from title when empty // 为空时由标题生成
	Content string `json:"content" form:"content"`
}

// NoteIDRequest note id in the path
// NoteIDRequest 路径中的笔记 ID
type NoteIDRequest struct {
	ID string `uri:"id" binding:"required,max=64"`
}

// NoteSlugRequest note slug in the path
// NoteSlugRequest 路径中的笔记 slug
type NoteSlugRequest struct {
	Slug string `uri:"slug" binding:"required,max=255,slug"`
}

// NoteListRequest Request parameters for listing notes
// NoteListRequest 笔记列表请求参数
type NoteListRequest struct {
	Page   int    `json:"page" form:"page"`   // Clamped to >= 1 // 归一化为 >= 1
	Limit  int    `json:"limit" form:"limit"` // Clamped to [1, 50] // 归一化到 [1, 50]
	Search string `json:"search" form:"search" binding:"omitempty,max=255"`
}

// NoteUpdateRequest Partial update, omitted fields stay untouched
// NoteUpdateRequest 部分更新，未提供的字段保持不变
type NoteUpdateRequest struct {
	Title   *string `json:"title" form:"title" binding:"omitempty,max=255"`
	Slug    *string `json:"slug" form:"slug" binding:"omitempty,max=255,slug"`
	Content *string `json:"content" form:"content"`
}
