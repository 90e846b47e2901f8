// Package service 实现业务逻辑层
package service

import (
	"context"
	"strings"

	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/internal/dto"
	"github.com/haierkeys/ecrit-note-service/pkg/cache"
	"github.com/haierkeys/ecrit-note-service/pkg/convert"
	"github.com/haierkeys/ecrit-note-service/pkg/logger"
	"github.com/haierkeys/ecrit-note-service/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxTitleLength 标题最大长度
const maxTitleLength = 255

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 创建笔记，slug 为空时由标题生成
	Create(ctx context.Context, uid string, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Get 获取单条笔记
	Get(ctx context.Context, uid string, id string) (*dto.NoteDTO, error)

	// GetBySlug 按 slug 获取单条笔记
	GetBySlug(ctx context.Context, uid string, slug string) (*dto.NoteDTO, error)

	// List 获取笔记列表
	List(ctx context.Context, uid string, params *dto.NoteListRequest) (*dto.NotePageDTO, error)

	// Update 部分更新笔记
	Update(ctx context.Context, uid string, id string, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)

	// Delete 删除笔记
	Delete(ctx context.Context, uid string, id string) (*dto.NoteDTO, error)
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	cache    *cache.Coordinator
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, cc *cache.Coordinator, lg *zap.Logger, config *ServiceConfig) NoteService {
	if cc == nil {
		cc = cache.NewCoordinator(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{
		noteRepo: noteRepo,
		cache:    cc,
		logger:   lg,
		config:   config.withDefaults(),
	}
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, uid string, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	title, err := validateTitle(params.Title)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(params.Slug)
	if slug == "" {
		slug = deriveSlug(title)
	} else if !util.IsValidSlug(slug) {
		return nil, domain.NewValidationError("slug", "must be lowercase letters, digits and single dashes")
	}

	note, err := s.noteRepo.Create(ctx, &domain.Note{
		OwnerID: uid,
		Title:   title,
		Slug:    slug,
		Content: params.Content,
	})
	if err != nil {
		return nil, err
	}

	// 新笔记必须出现在下一次列表请求中
	s.cache.DeleteByPattern(ctx, NotesListPrefix(uid))
	// 清理可能残留的同 slug 缓存（例如刚被删除的旧笔记）
	s.cache.DeleteByExactKeys(ctx, NoteSlugKey(uid, note.Slug))

	s.logger.Debug("note created",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, note.ID),
		zap.String("slug", note.Slug))

	return toNoteDTO(note)
}

// Get 获取单条笔记（读穿缓存）
func (s *noteService) Get(ctx context.Context, uid string, id string) (*dto.NoteDTO, error) {
	var out dto.NoteDTO
	err := s.cache.Remember(ctx, NoteKey(uid, id), s.config.Cache.NoteTTL, &out, func(ctx context.Context) (interface{}, error) {
		note, err := s.noteRepo.GetByID(ctx, uid, id)
		if err != nil {
			return nil, err
		}
		return toNoteDTO(note)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBySlug 按 slug 获取单条笔记（读穿缓存）
func (s *noteService) GetBySlug(ctx context.Context, uid string, slug string) (*dto.NoteDTO, error) {
	var out dto.NoteDTO
	err := s.cache.Remember(ctx, NoteSlugKey(uid, slug), s.config.Cache.NoteTTL, &out, func(ctx context.Context) (interface{}, error) {
		note, err := s.noteRepo.GetBySlug(ctx, uid, slug)
		if err != nil {
			return nil, err
		}
		return toNoteDTO(note)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List 获取笔记列表，键由归一化后的分页参数与搜索词决定
func (s *noteService) List(ctx context.Context, uid string, params *dto.NoteListRequest) (*dto.NotePageDTO, error) {
	q := domain.NoteListQuery{OwnerID: uid}
	if params != nil {
		q.Page, q.Limit, q.Search = params.Page, params.Limit, params.Search
	}
	q = q.Normalize()

	var out dto.NotePageDTO
	key := NotesListKey(uid, q.Page, q.Limit, q.Search)
	err := s.cache.Remember(ctx, key, s.config.Cache.ListTTL, &out, func(ctx context.Context) (interface{}, error) {
		page, err := s.noteRepo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		items := make([]*dto.NoteSummaryDTO, 0, len(page.Items))
		for _, n := range page.Items {
			item, err := toNoteSummaryDTO(n)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return &dto.NotePageDTO{Items: items, Total: page.Total, Page: q.Page, Limit: q.Limit}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update 部分更新笔记
func (s *noteService) Update(ctx context.Context, uid string, id string, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	upd := domain.NoteUpdate{Content: params.Content}
	if params.Title != nil {
		title, err := validateTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
	}
	if params.Slug != nil {
		slug := strings.TrimSpace(*params.Slug)
		if !util.IsValidSlug(slug) {
			return nil, domain.NewValidationError("slug", "must be lowercase letters, digits and single dashes")
		}
		upd.Slug = &slug
	}
	if upd.IsEmpty() {
		return nil, domain.NewValidationError("", "at least one of title, slug, content is required")
	}

	before, after, err := s.noteRepo.Update(ctx, uid, id, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, before, after)

	return toNoteDTO(after)
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, uid string, id string) (*dto.NoteDTO, error) {
	before, err := s.noteRepo.Delete(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, before, nil)

	s.logger.Debug("note deleted",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, id))

	return toNoteDTO(before)
}

// invalidate drops every key that may hold a copy of the note, before and after the write
// invalidate 删除写入前后可能持有该笔记副本的全部缓存键
func (s *noteService) invalidate(ctx context.Context, notes ...*domain.Note) {
	keys := make([]string, 0, 6)
	seen := make(map[string]struct{}, 2)
	for _, n := range notes {
		if n == nil {
			continue
		}
		if _, ok := seen[n.ID]; !ok {
			seen[n.ID] = struct{}{}
			keys = append(keys, NoteKey(n.OwnerID, n.ID), SharedNoteKey(n.ID))
		}
		keys = append(keys, NoteSlugKey(n.OwnerID, n.Slug))
	}
	s.cache.DeleteByExactKeys(ctx, keys...)
	for _, n := range notes {
		if n != nil {
			s.cache.DeleteByPattern(ctx, NotesListPrefix(n.OwnerID))
			break
		}
	}
}

// validateTitle 去除首尾空白后校验标题长度
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.NewValidationError("title", "is required")
	}
	if len(title) > maxTitleLength {
		return "", domain.NewValidationError("title", "must be at most 255 bytes")
	}
	return title, nil
}

// deriveSlug 由标题生成 slug；标题中没有可用字符时使用随机后缀
func deriveSlug(title string) string {
	if slug := util.Slugify(title); slug != "" {
		return slug
	}
	return "note-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func toNoteDTO(n *domain.Note) (*dto.NoteDTO, error) {
	out := &dto.NoteDTO{}
	if err := convert.StructAssign(n, out); err != nil {
		return nil, err
	}
	out.HasPassword = n.Public && n.HasPassword()
	return out, nil
}

func toNoteSummaryDTO(n *domain.Note) (*dto.NoteSummaryDTO, error) {
	out := &dto.NoteSummaryDTO{}
	if err := convert.StructAssign(n, out); err != nil {
		return nil, err
	}
	out.HasPassword = n.Public && n.HasPassword()
	return out, nil
}
