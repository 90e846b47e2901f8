package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/haierkeys/ecrit-note-service/internal/dao"
	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/pkg/cache"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingRepo counts read calls that reach the repository
// countingRepo 统计穿透到仓储的读请求次数
type countingRepo struct {
	domain.NoteRepository
	gets    atomic.Int32
	slugs   atomic.Int32
	lists   atomic.Int32
	publics atomic.Int32
}

func (r *countingRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	r.gets.Add(1)
	return r.NoteRepository.GetByID(ctx, ownerID, id)
}

func (r *countingRepo) GetBySlug(ctx context.Context, ownerID, slug string) (*domain.Note, error) {
	r.slugs.Add(1)
	return r.NoteRepository.GetBySlug(ctx, ownerID, slug)
}

func (r *countingRepo) List(ctx context.Context, q domain.NoteListQuery) (*domain.NotePage, error) {
	r.lists.Add(1)
	return r.NoteRepository.List(ctx, q)
}

func (r *countingRepo) GetPublicByID(ctx context.Context, id string) (*domain.Note, error) {
	r.publics.Add(1)
	return r.NoteRepository.GetPublicByID(ctx, id)
}

type testEnv struct {
	repo  *countingRepo
	cache *cache.Coordinator
	notes NoteService
	share ShareService
}

func newTestEnv(t *testing.T, lg *zap.Logger) *testEnv {
	t.Helper()
	if lg == nil {
		lg = zap.NewNop()
	}

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	}, lg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := &countingRepo{NoteRepository: dao.NewNoteRepository(dao.New(db, context.Background(), dao.WithLogger(lg)))}
	cc := cache.NewCoordinator(cache.NewMemoryStore(100), cache.WithLogger(lg))
	cfg := &ServiceConfig{Share: ShareServiceConfig{PublicURL: "https://notes.example.com/"}}

	return &testEnv{
		repo:  repo,
		cache: cc,
		notes: NewNoteService(repo, cc, lg, cfg),
		share: NewShareService(repo, cc, lg, cfg),
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
