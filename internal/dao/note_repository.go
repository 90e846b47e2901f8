// Package dao 实现数据访问层
package dao

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/internal/model"
	"github.com/haierkeys/ecrit-note-service/pkg/timex"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// likeEscape LIKE 转义字符
const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// foldCase lowercases with Go's Unicode tables; SQL LOWER() only folds ASCII on SQLite
// foldCase 使用 Go 的 Unicode 规则转小写；SQLite 的 LOWER() 只处理 ASCII
func foldCase(s string) string {
	return strings.ToLower(s)
}

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	n := &domain.Note{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Slug:      m.Slug,
		Content:   m.Content,
		Size:      m.Size,
		Public:    m.Public,
		CreatedAt: m.CreatedAt.Time(),
		UpdatedAt: m.UpdatedAt.Time(),
	}
	if m.SharePassword != nil && *m.SharePassword != "" {
		digest := *m.SharePassword
		n.SharePassword = &digest
	}
	return n
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		ID:            n.ID,
		OwnerID:       n.OwnerID,
		Title:         n.Title,
		Slug:          n.Slug,
		Content:       n.Content,
		TitleLower:    foldCase(n.Title),
		ContentLower:  foldCase(n.Content),
		Size:          n.Size,
		Public:        n.Public,
		SharePassword: n.SharePassword,
		CreatedAt:     timex.Time(n.CreatedAt),
		UpdatedAt:     timex.Time(n.UpdatedAt),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNoteNotFound
	}
	return err
}

// slugTaken reports whether another note of the owner already uses slug
// slugTaken 判断该用户的其他笔记是否已使用 slug
func (r *noteRepository) slugTaken(db *gorm.DB, ownerID, slug, exceptID string) (bool, error) {
	var count int64
	q := db.Model(&model.Note{}).Where("owner_id = ? AND slug = ?", ownerID, slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Size = int64(len(m.Content))
	// 新建笔记总是私有的
	m.Public = false
	m.SharePassword = nil

	err := r.dao.ExecuteWrite(ctx, m.OwnerID, func() error {
		db := r.dao.DB(ctx)
		taken, err := r.slugTaken(db, m.OwnerID, m.Slug, "")
		if err != nil {
			return err
		}
		if taken {
			return &domain.ConflictError{Slug: m.Slug}
		}
		if err := db.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || domain.IsUniqueViolation(err) {
				return &domain.ConflictError{Slug: m.Slug}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, domain.Upstream("note.create", err)
	}
	return r.toDomain(m), nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	var m model.Note
	err := r.dao.DB(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Take(&m).Error
	if err != nil {
		return nil, domain.Upstream("note.get", notFound(err))
	}
	return r.toDomain(&m), nil
}

// GetBySlug 根据 slug 获取笔记
func (r *noteRepository) GetBySlug(ctx context.Context, ownerID, slug string) (*domain.Note, error) {
	var m model.Note
	err := r.dao.DB(ctx).Where("owner_id = ? AND slug = ?", ownerID, slug).Take(&m).Error
	if err != nil {
		return nil, domain.Upstream("note.getBySlug", notFound(err))
	}
	return r.toDomain(&m), nil
}

// GetPublicByID 获取公开笔记，私有笔记与不存在的笔记同样返回 ErrNoteNotFound
func (r *noteRepository) GetPublicByID(ctx context.Context, id string) (*domain.Note, error) {
	var m model.Note
	err := r.dao.DB(ctx).Where("id = ? AND public = ?", id, true).Take(&m).Error
	if err != nil {
		return nil, domain.Upstream("note.getPublic", notFound(err))
	}
	return r.toDomain(&m), nil
}

// List 分页获取笔记列表以及相同过滤条件下的总数
func (r *noteRepository) List(ctx context.Context, q domain.NoteListQuery) (*domain.NotePage, error) {
	q = q.Normalize()

	base := r.dao.DB(ctx).Model(&model.Note{}).Where("owner_id = ?", q.OwnerID)
	if term := foldCase(strings.TrimSpace(q.Search)); term != "" {
		pattern := "%" + likeReplacer.Replace(term) + "%"
		base = base.Where("(title_lower LIKE ? ESCAPE '"+likeEscape+"' OR content_lower LIKE ? ESCAPE '"+likeEscape+"')", pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, domain.Upstream("note.count", err)
	}

	page := &domain.NotePage{Items: []*domain.Note{}, Total: total}
	if total == 0 || int64(q.Offset()) >= total {
		return page, nil
	}

	var rows []*model.Note
	err := base.Session(&gorm.Session{}).
		Order("updated_at DESC").
		Order("id ASC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, domain.Upstream("note.list", err)
	}

	for _, m := range rows {
		page.Items = append(page.Items, r.toDomain(m))
	}
	return page, nil
}

// Update 部分更新笔记，返回更新前与更新后的状态
func (r *noteRepository) Update(ctx context.Context, ownerID, id string, fields domain.NoteUpdate) (*domain.Note, *domain.Note, error) {
	var before, after model.Note

	err := r.dao.ExecuteWrite(ctx, ownerID, func() error {
		return r.dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).Take(&before).Error; err != nil {
				return notFound(err)
			}
			if fields.IsEmpty() {
				after = before
				return nil
			}

			updates := map[string]interface{}{}
			if fields.Title != nil {
				updates["title"] = *fields.Title
				updates["title_lower"] = foldCase(*fields.Title)
			}
			if fields.Slug != nil && *fields.Slug != before.Slug {
				taken, err := r.slugTaken(tx, ownerID, *fields.Slug, id)
				if err != nil {
					return err
				}
				if taken {
					return &domain.ConflictError{Slug: *fields.Slug}
				}
				updates["slug"] = *fields.Slug
			}
			if fields.Content != nil {
				updates["content"] = *fields.Content
				updates["content_lower"] = foldCase(*fields.Content)
				updates["size"] = int64(len(*fields.Content))
			}
			updates["updated_at"] = timex.Now()

			err := tx.Model(&model.Note{}).Where("id = ? AND owner_id = ?", id, ownerID).Updates(updates).Error
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) || domain.IsUniqueViolation(err) {
					return &domain.ConflictError{Slug: *fields.Slug}
				}
				return err
			}
			return tx.Where("id = ? AND owner_id = ?", id, ownerID).Take(&after).Error
		})
	})
	if err != nil {
		return nil, nil, domain.Upstream("note.update", err)
	}
	return r.toDomain(&before), r.toDomain(&after), nil
}

// UpdateShare 更新分享状态；关闭分享时无条件清除密码摘要
func (r *noteRepository) UpdateShare(ctx context.Context, ownerID, id string, share domain.ShareUpdate) (*domain.Note, error) {
	var after model.Note

	var digest interface{}
	if share.Public && share.PasswordDigest != nil && *share.PasswordDigest != "" {
		digest = *share.PasswordDigest
	}

	err := r.dao.ExecuteWrite(ctx, ownerID, func() error {
		return r.dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&model.Note{}).
				Where("id = ? AND owner_id = ?", id, ownerID).
				Updates(map[string]interface{}{
					"public":         share.Public,
					"share_password": digest,
					"updated_at":     timex.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrNoteNotFound
			}
			return tx.Where("id = ? AND owner_id = ?", id, ownerID).Take(&after).Error
		})
	})
	if err != nil {
		return nil, domain.Upstream("note.share", notFound(err))
	}
	return r.toDomain(&after), nil
}

// Delete 删除笔记，返回被删除的笔记
func (r *noteRepository) Delete(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	var before model.Note

	err := r.dao.ExecuteWrite(ctx, ownerID, func() error {
		return r.dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).Take(&before).Error; err != nil {
				return notFound(err)
			}
			return tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Note{}).Error
		})
	})
	if err != nil {
		return nil, domain.Upstream("note.delete", err)
	}
	return r.toDomain(&before), nil
}
