// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/internal/dto"
	"github.com/haierkeys/ecrit-note-service/pkg/cache"
	"github.com/haierkeys/ecrit-note-service/pkg/logger"
	"github.com/haierkeys/ecrit-note-service/pkg/timex"
	"github.com/haierkeys/ecrit-note-service/pkg/util"

	"go.uber.org/zap"
)

// maxPasswordLength bcrypt 只使用前 72 字节
const maxPasswordLength = 72

// ShareService defines the share access gate
// ShareService 定义分享访问控制服务接口
type ShareService interface {
	// SetSharing switches a note between Private, Public-Open and Public-Locked
	// SetSharing 切换笔记的 私有 / 公开 / 公开加密 状态
	SetSharing(ctx context.Context, uid string, id string, params *dto.NoteShareRequest) (*dto.NoteDTO, error)

	// Link 计算笔记当前的分享链接
	Link(ctx context.Context, uid string, id string) (*dto.ShareLink, error)

	// Peek returns content for open notes and only the title for locked ones unless the password matches
	// Peek 公开笔记返回内容；加密笔记只返回标题，除非提供了正确密码
	Peek(ctx context.Context, id string, password string) (*dto.SharedNoteDTO, error)

	// Unlock verifies the password and returns the content
	// Unlock 校验密码并返回内容
	Unlock(ctx context.Context, id string, password string) (*dto.SharedNoteDTO, error)
}

// sharedEntry cached anonymous view of a public note, including the digest needed by Unlock
// sharedEntry 公开笔记的匿名视图缓存，包含 Unlock 所需的摘要
type sharedEntry struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Digest    string     `json:"digest,omitempty"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// shareService implementation of ShareService interface
// shareService 实现 ShareService 接口
type shareService struct {
	noteRepo domain.NoteRepository // Note repository // 笔记仓库
	cache    *cache.Coordinator    // Cache coordinator // 缓存协调器
	logger   *zap.Logger           // Logger // 日志器
	config   *ServiceConfig        // Service configuration // 服务配置
}

// NewShareService creates ShareService instance
// NewShareService 创建 ShareService 实例
func NewShareService(noteRepo domain.NoteRepository, cc *cache.Coordinator, lg *zap.Logger, config *ServiceConfig) ShareService {
	if cc == nil {
		cc = cache.NewCoordinator(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &shareService{
		noteRepo: noteRepo,
		cache:    cc,
		logger:   lg,
		config:   config.withDefaults(),
	}
}

// SetSharing 设置分享状态；关闭分享时无条件清除密码摘要
func (s *shareService) SetSharing(ctx context.Context, uid string, id string, params *dto.NoteShareRequest) (*dto.NoteDTO, error) {
	if params.Public == nil {
		return nil, domain.NewValidationError("public", "is required")
	}

	upd := domain.ShareUpdate{Public: *params.Public}
	if upd.Public && params.Password != nil && *params.Password != "" {
		if len(*params.Password) > maxPasswordLength {
			return nil, domain.NewValidationError("password", "must be at most 72 bytes")
		}
		digest, err := util.GeneratePasswordHash(*params.Password)
		if err != nil {
			return nil, domain.Upstream("share.hash", err)
		}
		upd.PasswordDigest = &digest
	}

	// 先取旧值，用于失效旧 slug 之外的缓存键；笔记不存在时直接返回 NotFound
	before, err := s.noteRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	after, err := s.noteRepo.UpdateShare(ctx, uid, id, upd)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, before, after)

	state := after.ShareState()
	shareChanges.WithLabelValues(string(state)).Inc()
	s.logger.Info("note sharing changed",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, id),
		zap.String("from", string(before.ShareState())),
		zap.String("to", string(state)))

	out, err := toNoteDTO(after)
	if err != nil {
		return nil, err
	}
	out.ShareURL = s.shareURL(after)
	return out, nil
}

// Link 计算分享链接，不落库
func (s *shareService) Link(ctx context.Context, uid string, id string) (*dto.ShareLink, error) {
	note, err := s.noteRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	return &dto.ShareLink{
		NoteID:      note.ID,
		Public:      note.Public,
		HasPassword: note.Public && note.HasPassword(),
		URL:         s.shareURL(note),
	}, nil
}

// Peek 匿名预览
func (s *shareService) Peek(ctx context.Context, id string, password string) (*dto.SharedNoteDTO, error) {
	entry, err := s.loadShared(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			shareAccess.WithLabelValues("peek", resultNotFound).Inc()
		} else {
			shareAccess.WithLabelValues("peek", resultError).Inc()
		}
		return nil, err
	}

	if entry.Digest == "" {
		shareAccess.WithLabelValues("peek", resultGranted).Inc()
		return entry.full(), nil
	}

	if password == "" {
		shareAccess.WithLabelValues("peek", resultLocked).Inc()
		return &dto.SharedNoteDTO{ID: entry.ID, Title: entry.Title, RequiresPassword: true}, nil
	}

	if !util.CheckPasswordHash(entry.Digest, password) {
		shareAccess.WithLabelValues("peek", resultDenied).Inc()
		s.logger.Info("shared note peek denied",
			zap.String(logger.FieldNoteID, id),
			zap.String(logger.FieldReason, "wrong_password"))
		return nil, &domain.AuthDeniedError{}
	}

	shareAccess.WithLabelValues("peek", resultGranted).Inc()
	return entry.full(), nil
}

// Unlock 密码解锁；笔记不存在或私有时与密码错误的响应完全一致
func (s *shareService) Unlock(ctx context.Context, id string, password string) (*dto.SharedNoteDTO, error) {
	if password == "" {
		shareAccess.WithLabelValues("unlock", resultLocked).Inc()
		return nil, &domain.AuthDeniedError{RequiresPassword: true}
	}

	entry, err := s.loadShared(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNoteNotFound) {
			shareAccess.WithLabelValues("unlock", resultError).Inc()
			return nil, err
		}
		// 保持与真实比较相近的耗时
		util.CheckPasswordAgainstNothing(password)
		shareAccess.WithLabelValues("unlock", resultDenied).Inc()
		s.logger.Info("shared note unlock denied",
			zap.String(logger.FieldNoteID, id),
			zap.String(logger.FieldReason, "not_found_or_private"))
		return nil, &domain.AuthDeniedError{}
	}

	if entry.Digest == "" {
		shareAccess.WithLabelValues("unlock", resultGranted).Inc()
		return entry.full(), nil
	}

	if !util.CheckPasswordHash(entry.Digest, password) {
		shareAccess.WithLabelValues("unlock", resultDenied).Inc()
		s.logger.Info("shared note unlock denied",
			zap.String(logger.FieldNoteID, id),
			zap.String(logger.FieldReason, "wrong_password"))
		return nil, &domain.AuthDeniedError{}
	}

	shareAccess.WithLabelValues("unlock", resultGranted).Inc()
	return entry.full(), nil
}

// loadShared 读穿缓存获取公开笔记；私有或不存在均为 ErrNoteNotFound
func (s *shareService) loadShared(ctx context.Context, id string) (*sharedEntry, error) {
	var entry sharedEntry
	err := s.cache.Remember(ctx, SharedNoteKey(id), s.config.Cache.SharedTTL, &entry, func(ctx context.Context) (interface{}, error) {
		note, err := s.noteRepo.GetPublicByID(ctx, id)
		if err != nil {
			return nil, err
		}
		e := &sharedEntry{
			ID:        note.ID,
			Title:     note.Title,
			Content:   note.Content,
			UpdatedAt: timex.Time(note.UpdatedAt),
		}
		if note.HasPassword() {
			e.Digest = *note.SharePassword
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// invalidate 可见性变化影响单条、slug、匿名读取与列表缓存
func (s *shareService) invalidate(ctx context.Context, before, after *domain.Note) {
	keys := []string{
		NoteKey(after.OwnerID, after.ID),
		NoteSlugKey(after.OwnerID, after.Slug),
		SharedNoteKey(after.ID),
	}
	if before != nil && before.Slug != after.Slug {
		keys = append(keys, NoteSlugKey(before.OwnerID, before.Slug))
	}
	s.cache.DeleteByExactKeys(ctx, keys...)
	s.cache.DeleteByPattern(ctx, NotesListPrefix(after.OwnerID))
}

// shareURL {public-url}/shared/{id}，私有笔记返回 nil
func (s *shareService) shareURL(n *domain.Note) *string {
	if !n.Public {
		return nil
	}
	u := strings.TrimRight(s.config.Share.PublicURL, "/") + "/shared/" + n.ID
	return &u
}

func (e *sharedEntry) full() *dto.SharedNoteDTO {
	content := e.Content
	updated := e.UpdatedAt
	return &dto.SharedNoteDTO{
		ID:        e.ID,
		Title:     e.Title,
		Content:   &content,
		UpdatedAt: &updated,
	}
}
