// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 笔记仓储接口
// Implementations return ErrNoteNotFound for rows that are absent or owned by someone else,
// and *ConflictError when (owner, slug) is already taken.
// 实现方在记录不存在或不属于该用户时返回 ErrNoteNotFound，(owner, slug) 重复时返回 *ConflictError。
type NoteRepository interface {
	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, ownerID, id string) (*Note, error)

	// GetBySlug 根据 slug 获取笔记
	GetBySlug(ctx context.Context, ownerID, slug string) (*Note, error)

	// GetPublicByID 获取公开笔记（匿名访问，不区分所有者）
	GetPublicByID(ctx context.Context, id string) (*Note, error)

	// List 分页获取笔记列表以及总数
	List(ctx context.Context, q NoteListQuery) (*NotePage, error)

	// Update 部分更新笔记，同时返回更新前的状态
	Update(ctx context.Context, ownerID, id string, fields NoteUpdate) (before, after *Note, err error)

	// UpdateShare 更新分享状态
	UpdateShare(ctx context.Context, ownerID, id string, share ShareUpdate) (*Note, error)

	// Delete 删除笔记
	Delete(ctx context.Context, ownerID, id string) (*Note, error)
}
