package model

import "github.com/haierkeys/ecrit-note-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID            string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id" form:"id"`
	OwnerID       string     `gorm:"column:owner_id;not null;type:varchar(64);uniqueIndex:idx_note_owner_slug,priority:1;index:idx_note_owner_updated,priority:1" json:"ownerId" form:"ownerId"`
	Title         string     `gorm:"column:title;not null;type:varchar(255)" json:"title" form:"title"`
	Slug          string     `gorm:"column:slug;not null;type:varchar(255);uniqueIndex:idx_note_owner_slug,priority:2" json:"slug" form:"slug"`
	Content       string     `gorm:"column:content;type:text" json:"content" form:"content"`
	TitleLower    string     `gorm:"column:title_lower;not null;default:'';type:varchar(255)" json:"-" form:"-"`
	ContentLower  string     `gorm:"column:content_lower;type:text" json:"-" form:"-"`
	Size          int64      `gorm:"column:size;not null;default:0" json:"size" form:"size"`
	Public        bool       `gorm:"column:public;not null;default:false" json:"public" form:"public"`
	SharePassword *string    `gorm:"column:share_password;type:varchar(255)" json:"-" form:"-"`
	CreatedAt     timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt     timex.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false;index:idx_note_owner_updated,priority:2" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
