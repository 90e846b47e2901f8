// Package domain 定义领域模型和接口
package domain

import (
	"strings"
	"time"
)

// ShareState visibility state of a note
// ShareState 笔记的可见性状态
type ShareState string

const (
	ShareStatePrivate      ShareState = "private"
	ShareStatePublicOpen   ShareState = "public-open"
	ShareStatePublicLocked ShareState = "public-locked"
)

// Note 笔记领域模型
type Note struct {
	ID      string
	OwnerID string
	Title   string
	Slug    string
	Content string
	Size    int64
	Public  bool
	// SharePassword bcrypt digest, only set while Public
	// SharePassword bcrypt 摘要，仅在公开时存在
	SharePassword *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ShareState derives the visibility state; a stale digest on a private note is ignored
// ShareState 推导可见性状态；私有笔记上残留的摘要会被忽略
func (n *Note) ShareState() ShareState {
	switch {
	case !n.Public:
		return ShareStatePrivate
	case n.HasPassword():
		return ShareStatePublicLocked
	default:
		return ShareStatePublicOpen
	}
}

// HasPassword 是否设置了分享密码
func (n *Note) HasPassword() bool {
	return n.SharePassword != nil && *n.SharePassword != ""
}

// NoteUpdate partial update, nil fields stay untouched
// NoteUpdate 部分更新，nil 字段保持不变
type NoteUpdate struct {
	Title   *string
	Slug    *string
	Content *string
}

// IsEmpty 是否没有任何字段需要更新
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Slug == nil && u.Content == nil
}

// ShareUpdate visibility change
// ShareUpdate 可见性变更
type ShareUpdate struct {
	Public bool
	// PasswordDigest digest of the share password, nil for none
	// PasswordDigest 分享密码摘要，nil 表示无密码
	PasswordDigest *string
}

// NoteListQuery 笔记列表查询条件
type NoteListQuery struct {
	OwnerID string
	Page    int
	Limit   int
	Search  string
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// Normalize clamps page to >=1 and limit to [1, MaxPageLimit], search is trimmed and lowercased
// Normalize 将 page 限制为 >=1，limit 限制在 [1, MaxPageLimit]，搜索词去空白并转小写
func (q NoteListQuery) Normalize() NoteListQuery {
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

// Offset 计算偏移量
func (q NoteListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// NotePage one page of a listing plus the total under the same filter
// NotePage 列表的一页，以及相同过滤条件下的总数
type NotePage struct {
	Items []*Note
	Total int64
}
