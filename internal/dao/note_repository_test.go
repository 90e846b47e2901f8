package dao

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/haierkeys/ecrit-note-service/internal/domain"
	"github.com/haierkeys/ecrit-note-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) domain.NoteRepository {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	}, zap.NewNop())
	require.NoError(t, err)

	wq := writequeue.New(nil, zap.NewNop())
	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	d := New(db, context.Background(), WithLogger(zap.NewNop()), WithWriteQueueManager(wq))
	return NewNoteRepository(d)
}

func create(t *testing.T, repo domain.NoteRepository, owner, title, slug, content string) *domain.Note {
	t.Helper()
	n, err := repo.Create(context.Background(), &domain.Note{OwnerID: owner, Title: title, Slug: slug, Content: content})
	require.NoError(t, err)
	return n
}

func TestNoteRepository_Create(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n := create(t, repo, "u1", "Hello", "hello", "héllo")
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, int64(len("héllo")), n.Size)
	assert.False(t, n.Public)
	assert.Equal(t, domain.ShareStatePrivate, n.ShareState())
	assert.False(t, n.CreatedAt.IsZero())

	_, err := repo.Create(ctx, &domain.Note{OwnerID: "u1", Title: "Again", Slug: "hello"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "hello", conflict.Slug)

	// 不同用户可以使用相同的 slug
	create(t, repo, "u2", "Hello", "hello", "")
}

func TestNoteRepository_GetIsOwnerScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	n := create(t, repo, "u1", "Hello", "hello", "body")

	got, err := repo.GetByID(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", got.Content)

	_, err = repo.GetByID(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	got, err = repo.GetBySlug(ctx, "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	_, err = repo.GetBySlug(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepository_List(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		create(t, repo, "u1", fmt.Sprintf("Note %d", i), fmt.Sprintf("note-%d", i), "")
	}
	create(t, repo, "u1", "Budget", "budget", "raise of 50% next year")
	create(t, repo, "u1", "Numbers", "numbers", "500 items")
	create(t, repo, "u2", "Other", "other", "")

	page, err := repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Page: 1, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(9), page.Total)
	assert.Len(t, page.Items, 4)

	seen := map[string]bool{}
	for p := 1; p <= 3; p++ {
		pg, err := repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Page: p, Limit: 4})
		require.NoError(t, err)
		for _, it := range pg.Items {
			assert.False(t, seen[it.ID], "pages must not overlap")
			seen[it.ID] = true
		}
	}
	assert.Len(t, seen, 9)

	past, err := repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Page: 10, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(9), past.Total)
	assert.Empty(t, past.Items)

	// % 作为字面量匹配
	hits, err := repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Search: "50%"})
	require.NoError(t, err)
	require.Len(t, hits.Items, 1)
	assert.Equal(t, "budget", hits.Items[0].Slug)

	hits, err = repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Search: "  NUMBERS "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Total)
}

// 非 ASCII 字母同样忽略大小写
func TestNoteRepository_ListSearchFoldsUnicodeCase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	n := create(t, repo, "u1", "Über Café", "uber", "ÉCOLE notes")
	create(t, repo, "u1", "Plain", "plain", "nothing here")

	for _, term := range []string{"über", "ÜBER", "café", "CAFÉ", "école"} {
		hits, err := repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Search: term})
		require.NoError(t, err)
		if assert.Equal(t, int64(1), hits.Total, term) {
			assert.Equal(t, n.ID, hits.Items[0].ID, term)
		}
	}

	title := "Ärger Über Öl"
	content := "ÇA VA"
	_, _, err := repo.Update(ctx, "u1", n.ID, domain.NoteUpdate{Title: &title, Content: &content})
	require.NoError(t, err)

	hits, err := repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Search: "ärger"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Total)
	hits, err = repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Search: "ça va"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Total)
	hits, err = repo.List(ctx, domain.NoteListQuery{OwnerID: "u1", Search: "école"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), hits.Total)
}

func TestNoteRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := create(t, repo, "u1", "A", "a", "one")
	create(t, repo, "u1", "B", "b", "")

	content := "two two"
	before, after, err := repo.Update(ctx, "u1", a.ID, domain.NoteUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "one", before.Content)
	assert.Equal(t, "two two", after.Content)
	assert.Equal(t, int64(7), after.Size)
	assert.Equal(t, "A", after.Title)

	slug := "b"
	_, _, err = repo.Update(ctx, "u1", a.ID, domain.NoteUpdate{Slug: &slug})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	// 保持原 slug 不算冲突
	same := "a"
	_, _, err = repo.Update(ctx, "u1", a.ID, domain.NoteUpdate{Slug: &same})
	assert.NoError(t, err)

	_, _, err = repo.Update(ctx, "u2", a.ID, domain.NoteUpdate{Content: &content})
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	before, after, err = repo.Update(ctx, "u1", a.ID, domain.NoteUpdate{})
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestNoteRepository_UpdateShare(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	n := create(t, repo, "u1", "A", "a", "")

	_, err := repo.GetPublicByID(ctx, n.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	digest := "$2a$10$digest"
	got, err := repo.UpdateShare(ctx, "u1", n.ID, domain.ShareUpdate{Public: true, PasswordDigest: &digest})
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatePublicLocked, got.ShareState())

	pub, err := repo.GetPublicByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, digest, *pub.SharePassword)

	// 关闭分享时清除密码
	got, err = repo.UpdateShare(ctx, "u1", n.ID, domain.ShareUpdate{Public: false, PasswordDigest: &digest})
	require.NoError(t, err)
	assert.Nil(t, got.SharePassword)
	assert.Equal(t, domain.ShareStatePrivate, got.ShareState())

	got, err = repo.UpdateShare(ctx, "u1", n.ID, domain.ShareUpdate{Public: true})
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatePublicOpen, got.ShareState())

	_, err = repo.UpdateShare(ctx, "u2", n.ID, domain.ShareUpdate{Public: true})
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	n := create(t, repo, "u1", "A", "a", "body")

	_, err := repo.Delete(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	deleted, err := repo.Delete(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", deleted.Content)

	_, err = repo.GetByID(ctx, "u1", n.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	// slug 释放后可以复用
	create(t, repo, "u1", "A", "a", "")
}

func TestNoteRepository_ConcurrentCreateSameSlug(t *testing.T) {
	repo := newTestRepo(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &domain.Note{OwnerID: "u1", Title: "Race", Slug: "race"})
			mu.Lock()
			defer mu.Unlock()
			var conflict *domain.ConflictError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &conflict):
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)
}
