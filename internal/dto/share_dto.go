package dto

import "github.com/haierkeys/ecrit-note-service/pkg/timex"

// NoteShareRequest 设置笔记分享状态请求
type NoteShareRequest struct {
	Public   *bool   `json:"public" binding:"required"`            // 是否公开
	Password *string `json:"password" binding:"omitempty,max=72"` // 访问密码，空表示无密码
}

// SharedUnlockRequest 使用密码解锁分享笔记
type SharedUnlockRequest struct {
	Password string `json:"password" form:"password" binding:"max=72"`
}

// ShareLink computed from the note on demand, never stored
// ShareLink 由笔记即时计算，不落库
type ShareLink struct {
	NoteID      string  `json:"noteId"`
	Public      bool    `json:"public"`
	HasPassword bool    `json:"hasPassword"`
	URL         *string `json:"url"`
}

// SharedNoteDTO anonymous view of a shared note, no owner and no digest
// SharedNoteDTO 匿名读取的笔记视图，不包含所有者与密码摘要
type SharedNoteDTO struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Content          *string     `json:"content,omitempty"`
	RequiresPassword bool        `json:"requiresPassword"`
	UpdatedAt        *timex.Time `json:"updatedAt,omitempty"`
}
