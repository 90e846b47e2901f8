package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaver struct {
	mu     sync.Mutex
	calls  int
	drafts []Draft
	err    error
	// gate 非 nil 时 UpdateNote 阻塞直到其被关闭
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeSaver) UpdateNote(ctx context.Context, noteID string, d Draft) error {
	f.mu.Lock()
	f.calls++
	f.drafts = append(f.drafts, d)
	gate, entered, err := f.gate, f.entered, f.err
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeSaver) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type harness struct {
	c         *Coordinator
	saver     *fakeSaver
	store     *SnapshotStore
	mock      *clock.Mock
	navigated *int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		saver:     &fakeSaver{},
		store:     NewSnapshotStore(t.TempDir()),
		mock:      clock.NewMock(),
		navigated: new(int32),
	}
	h.c = NewCoordinator("note-1", Draft{Title: "T", Slug: "t", Content: "body"}, h.saver, Options{
		Clock:     h.mock,
		Snapshots: h.store,
		Navigate:  func() { atomic.AddInt32(h.navigated, 1) },
	})
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) navigations() int32 {
	return atomic.LoadInt32(h.navigated)
}

func TestCoordinator_EditThenSave(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateClean, h.c.State())

	h.c.SetContent("new body")
	h.c.SetTitle("New")
	assert.Equal(t, StateDirty, h.c.State())

	require.NoError(t, h.c.Save(context.Background()))
	assert.Equal(t, StateClean, h.c.State())
	assert.Equal(t, 1, h.saver.Calls())
	assert.Equal(t, Draft{Title: "New", Slug: "t", Content: "new body"}, h.saver.drafts[0])
}

func TestCoordinator_SaveWhenCleanIsNoop(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Save(context.Background()))
	assert.Equal(t, 0, h.saver.Calls())
}

func TestCoordinator_SaveFailureStaysDirty(t *testing.T) {
	h := newHarness(t)
	h.saver.err = errors.New("network down")
	h.c.SetSlug("x")

	err := h.c.Save(context.Background())
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.True(t, saveErr.Retryable())
	assert.Equal(t, "note-1", saveErr.NoteID)
	assert.Equal(t, StateDirty, h.c.State())
	assert.Equal(t, 1, h.saver.Calls(), "no automatic retry")

	h.saver.err = nil
	require.NoError(t, h.c.Save(context.Background()))
	assert.Equal(t, StateClean, h.c.State())
	assert.Equal(t, 2, h.saver.Calls())
}

func TestCoordinator_SingleSaveInFlight(t *testing.T) {
	h := newHarness(t)
	h.saver.gate = make(chan struct{})
	h.saver.entered = make(chan struct{}, 1)
	h.c.SetContent("v1")

	errCh := make(chan error, 1)
	go func() { errCh <- h.c.Save(context.Background()) }()
	<-h.saver.entered

	assert.Equal(t, StateSaving, h.c.State())
	assert.ErrorIs(t, h.c.Save(context.Background()), ErrSaveInFlight)

	// 保存期间的输入使会话在保存完成后仍为 Dirty
	h.c.SetContent("v2")
	close(h.saver.gate)
	require.NoError(t, <-errCh)

	assert.Equal(t, 1, h.saver.Calls())
	assert.Equal(t, StateDirty, h.c.State())
	assert.Equal(t, "v2", h.c.Snapshot().Draft.Content)
}

func TestCoordinator_RequestExit(t *testing.T) {
	t.Run("clean navigates now", func(t *testing.T) {
		h := newHarness(t)
		assert.True(t, h.c.RequestExit())
		assert.Equal(t, int32(1), h.navigations())
		assert.False(t, h.c.RequestExit())
		assert.Equal(t, int32(1), h.navigations())
	})

	t.Run("dirty waits for a decision", func(t *testing.T) {
		h := newHarness(t)
		h.c.SetContent("unsaved")
		assert.False(t, h.c.RequestExit())
		assert.Equal(t, int32(0), h.navigations())

		snap := h.c.Snapshot()
		assert.Equal(t, StateExitPending, snap.State)
		assert.True(t, snap.Dirty)
		assert.True(t, snap.PendingExit)
	})
}

func TestCoordinator_Discard(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.c.Discard(), ErrNoExitPending)

	h.c.SetContent("unsaved")
	require.NoError(t, h.store.Write("note-1", "unsaved"))
	h.c.RequestExit()

	require.NoError(t, h.c.Discard())
	assert.Equal(t, int32(1), h.navigations())
	assert.Equal(t, 0, h.saver.Calls(), "remote note untouched")

	_, ok, err := h.store.Read("note-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// 会话已销毁
	h.c.SetContent("ignored")
	assert.Equal(t, StateClean, h.c.State())
	assert.ErrorIs(t, h.c.Save(context.Background()), ErrClosed)
}

func TestCoordinator_SaveAndExit(t *testing.T) {
	h := newHarness(t)
	h.c.SetContent("final")
	h.c.RequestExit()

	require.NoError(t, h.c.SaveAndExit(context.Background()))
	assert.Equal(t, 1, h.saver.Calls())
	assert.Equal(t, int32(1), h.navigations())
}

func TestCoordinator_SaveAndExitFailureKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.saver.err = errors.New("503")
	h.c.SetContent("final")

	var saveErr *SaveError
	require.ErrorAs(t, h.c.SaveAndExit(context.Background()), &saveErr)
	assert.Equal(t, int32(0), h.navigations())
	assert.Equal(t, StateDirty, h.c.State())
}

func TestCoordinator_SaveAndExitWaitsForInFlightSave(t *testing.T) {
	h := newHarness(t)
	h.saver.gate = make(chan struct{})
	h.saver.entered = make(chan struct{}, 1)
	h.c.SetContent("v1")

	errCh := make(chan error, 1)
	go func() { errCh <- h.c.Save(context.Background()) }()
	<-h.saver.entered

	require.NoError(t, h.c.SaveAndExit(context.Background()))
	assert.Equal(t, int32(0), h.navigations())

	close(h.saver.gate)
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, h.saver.Calls())
	assert.Equal(t, int32(1), h.navigations())
}

// 保存期间继续输入时不导航，回到 ExitPending；之后的普通保存也不会导航
func TestCoordinator_SaveAndExitCancelledByEditDuringSave(t *testing.T) {
	h := newHarness(t)
	h.saver.gate = make(chan struct{})
	h.saver.entered = make(chan struct{}, 1)
	h.c.SetContent("v1")

	errCh := make(chan error, 1)
	go func() { errCh <- h.c.Save(context.Background()) }()
	<-h.saver.entered

	require.NoError(t, h.c.SaveAndExit(context.Background()))
	h.c.SetContent("v2")

	close(h.saver.gate)
	require.NoError(t, <-errCh)
	assert.Equal(t, int32(0), h.navigations())
	assert.Equal(t, StateExitPending, h.c.State())
	assert.True(t, h.c.Snapshot().PendingExit)

	require.NoError(t, h.c.Save(context.Background()))
	assert.Equal(t, StateClean, h.c.State())
	assert.Equal(t, 2, h.saver.Calls())
	assert.Equal(t, int32(0), h.navigations(), "plain save must not navigate")

	assert.True(t, h.c.RequestExit())
	assert.Equal(t, int32(1), h.navigations())
}

func TestCoordinator_SnapshotDebounce(t *testing.T) {
	h := newHarness(t)

	h.c.SetContent("a")
	h.mock.Add(400 * time.Millisecond)
	h.c.SetContent("ab")
	h.mock.Add(400 * time.Millisecond)

	_, ok, err := h.store.Read("note-1")
	require.NoError(t, err)
	assert.False(t, ok, "timer rearmed by the second edit")

	h.mock.Add(100 * time.Millisecond)
	assert.Eventually(t, func() bool {
		content, ok, _ := h.store.Read("note-1")
		return ok && content == "ab"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, h.saver.Calls(), "snapshot is not a remote save")

	// 保存成功后删除本地快照
	require.NoError(t, h.c.Save(context.Background()))
	_, ok, err = h.store.Read("note-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCoordinator_AppendContent(t *testing.T) {
	h := newHarness(t)
	h.c.AppendContent("hello")
	h.c.AppendContent("")
	h.c.AppendContent("world")
	assert.Equal(t, "body hello world", h.c.Snapshot().Draft.Content)
	assert.True(t, h.c.Snapshot().Dirty)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "exit-pending", StateExitPending.String())
	assert.Equal(t, "state(9)", State(9).String())
}
