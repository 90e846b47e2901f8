// Package editor client-side edit session: dirty tracking, local snapshots, explicit saves and guarded exit
// Package editor 客户端编辑会话：脏状态跟踪、本地快照、显式保存与退出保护
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/logger"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultDebounce 本地快照的防抖间隔
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrSaveInFlight a remote save is already running
	// ErrSaveInFlight 已有远程保存正在进行
	ErrSaveInFlight = errors.New("save already in flight")
	// ErrClosed 编辑会话已结束
	ErrClosed = errors.New("editor session closed")
	// ErrNoExitPending Discard called without a pending exit
	// ErrNoExitPending 没有待确认的退出时调用了 Discard
	ErrNoExitPending = errors.New("no exit pending")
)

// State 编辑会话状态
type State int

const (
	StateClean State = iota
	StateDirty
	StateSaving
	StateExitPending
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateExitPending:
		return "exit-pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Draft the editable fields of a note
// Draft 笔记的可编辑字段
type Draft struct {
	Title   string
	Slug    string
	Content string
}

// Saver persists a draft remotely
// Saver 远程保存草稿
type Saver interface {
	UpdateNote(ctx context.Context, noteID string, d Draft) error
}

// Snapshotter local draft storage, *SnapshotStore implements it
// Snapshotter 本地草稿存储，*SnapshotStore 实现了该接口
type Snapshotter interface {
	Write(noteID, content string) error
	Remove(noteID string) error
}

// SaveError a failed remote save; the draft stays dirty and the caller may retry
// SaveError 远程保存失败；草稿保持脏状态，调用方可以重试
type SaveError struct {
	NoteID string
	Err    error
}

func (e *SaveError) Error() string {
	return "save note " + e.NoteID + ": " + e.Err.Error()
}

func (e *SaveError) Unwrap() error { return e.Err }

// Retryable 保存失败总是可以重试
func (e *SaveError) Retryable() bool { return true }

// Snapshot 会话状态快照
type Snapshot struct {
	State       State
	Dirty       bool
	Saving      bool
	PendingExit bool
	Draft       Draft
}

// Options Coordinator 选项
type Options struct {
	Debounce  time.Duration
	Clock     clock.Clock
	Logger    *zap.Logger
	Snapshots Snapshotter
	// Navigate 离开编辑器，每个会话最多调用一次
	Navigate func()
}

// Coordinator owns one note's edit session. All transitions are serialized by mu;
// the remote call and navigation run outside the lock.
// Coordinator 持有一篇笔记的编辑会话，所有状态转换由 mu 串行化；远程调用与导航在锁外执行
type Coordinator struct {
	mu sync.Mutex

	noteID string
	draft  Draft

	dirty            bool
	saving           bool
	editedDuringSave bool
	exitPending      bool
	exitAfterSave    bool
	closed           bool

	timer    *clock.Timer
	timerGen uint64

	saver     Saver
	snapshots Snapshotter
	clock     clock.Clock
	debounce  time.Duration
	navigate  func()
	logger    *zap.Logger
}

// NewCoordinator starts a Clean session for a loaded note
// NewCoordinator 为已加载的笔记创建 Clean 状态的会话
func NewCoordinator(noteID string, initial Draft, saver Saver, opts Options) *Coordinator {
	c := &Coordinator{
		noteID:    noteID,
		draft:     initial,
		saver:     saver,
		snapshots: opts.Snapshots,
		clock:     opts.Clock,
		debounce:  opts.Debounce,
		navigate:  opts.Navigate,
		logger:    opts.Logger,
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.debounce <= 0 {
		c.debounce = DefaultDebounce
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.navigate == nil {
		c.navigate = func() {}
	}
	return c
}

// NoteID 会话对应的笔记 ID
func (c *Coordinator) NoteID() string {
	return c.noteID
}

func (c *Coordinator) stateLocked() State {
	switch {
	case c.saving:
		return StateSaving
	case c.exitPending && c.dirty:
		return StateExitPending
	case c.dirty:
		return StateDirty
	default:
		return StateClean
	}
}

// State 当前状态
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Snapshot 返回当前状态的副本
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:       c.stateLocked(),
		Dirty:       c.dirty,
		Saving:      c.saving,
		PendingExit: c.exitPending,
		Draft:       c.draft,
	}
}

// SetTitle 修改标题
func (c *Coordinator) SetTitle(title string) {
	c.edit(func(d *Draft) { d.Title = title })
}

// SetSlug 修改 slug
func (c *Coordinator) SetSlug(slug string) {
	c.edit(func(d *Draft) { d.Slug = slug })
}

// SetContent 替换正文
func (c *Coordinator) SetContent(content string) {
	c.edit(func(d *Draft) { d.Content = content })
}

// AppendContent appends a segment, separated from existing text by a single space
// AppendContent 追加一段文本，与已有内容之间以单个空格分隔
func (c *Coordinator) AppendContent(segment string) {
	if segment == "" {
		return
	}
	c.edit(func(d *Draft) {
		if d.Content != "" && !endsWithSpace(d.Content) {
			d.Content += " "
		}
		d.Content += segment
	})
}

func endsWithSpace(s string) bool {
	switch s[len(s)-1] {
	case ' ', '\n', '\t':
		return true
	}
	return false
}

func (c *Coordinator) edit(apply func(d *Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	apply(&c.draft)
	c.dirty = true
	if c.saving {
		c.editedDuringSave = true
	}
	c.armSnapshotLocked()
}

// armSnapshotLocked rearms the debounce timer; a stale fire is dropped by the generation check
// armSnapshotLocked 重置防抖计时器；过期的触发由代数检查丢弃
func (c *Coordinator) armSnapshotLocked() {
	if c.snapshots == nil {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen++
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.flushSnapshot(gen) })
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Coordinator) flushSnapshot(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	content := c.draft.Content
	c.timer = nil
	// 持锁写入，保证 Discard 之后不会再出现快照
	err := c.snapshots.Write(c.noteID, content)
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("write local snapshot failed",
			zap.String(logger.FieldNoteID, c.noteID), zap.Error(err))
	}
}

// Save pushes the draft with exactly one Saver call. Clean is a no-op;
// a concurrent call gets ErrSaveInFlight; a failure returns *SaveError and leaves the draft dirty.
// Save 以一次 Saver 调用推送草稿。Clean 时不做任何事；并发调用得到 ErrSaveInFlight；
// 失败时返回 *SaveError 且草稿保持脏状态
func (c *Coordinator) Save(ctx context.Context) error {
	return c.save(ctx, false)
}

func (c *Coordinator) save(ctx context.Context, thenExit bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if thenExit {
		c.exitAfterSave = true
	}
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	if !c.dirty {
		nav := c.exitAfterSave && c.closeLocked()
		c.mu.Unlock()
		if nav {
			c.navigate()
		}
		return nil
	}
	c.saving = true
	c.editedDuringSave = false
	draft := c.draft
	c.mu.Unlock()

	err := c.saver.UpdateNote(ctx, c.noteID, draft)

	c.mu.Lock()
	c.saving = false
	if c.closed {
		c.mu.Unlock()
		if err != nil {
			return &SaveError{NoteID: c.noteID, Err: err}
		}
		return nil
	}
	if err != nil {
		c.exitAfterSave = false
		c.mu.Unlock()
		c.logger.Warn("save note failed", zap.String(logger.FieldNoteID, c.noteID), zap.Error(err))
		return &SaveError{NoteID: c.noteID, Err: err}
	}
	if !c.editedDuringSave {
		c.dirty = false
		c.exitPending = false
	}
	if c.dirty && c.exitAfterSave {
		// 保存期间有新输入：放弃本次退出，回到 ExitPending 让用户重新选择
		c.exitAfterSave = false
		c.exitPending = true
	}
	nav := !c.dirty && c.exitAfterSave && c.closeLocked()
	removeSnapshot := !c.dirty && c.snapshots != nil
	if removeSnapshot {
		c.stopTimerLocked()
	}
	c.mu.Unlock()

	if removeSnapshot {
		if rerr := c.snapshots.Remove(c.noteID); rerr != nil {
			c.logger.Warn("remove local snapshot failed",
				zap.String(logger.FieldNoteID, c.noteID), zap.Error(rerr))
		}
	}
	if nav {
		c.navigate()
	}
	return nil
}

// closeLocked ends the session, reports whether the caller must navigate
// closeLocked 结束会话，返回调用方是否需要导航
func (c *Coordinator) closeLocked() bool {
	if c.closed {
		return false
	}
	c.closed = true
	c.exitPending = false
	c.exitAfterSave = false
	c.stopTimerLocked()
	return true
}

// RequestExit navigates immediately when Clean, otherwise enters ExitPending.
// It reports whether navigation happened.
// RequestExit 在 Clean 时立即导航，否则进入 ExitPending；返回是否已导航
func (c *Coordinator) RequestExit() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if c.dirty {
		c.exitPending = true
		c.mu.Unlock()
		return false
	}
	nav := c.closeLocked()
	c.mu.Unlock()
	if nav {
		c.navigate()
	}
	return nav
}

// Discard drops the unsaved draft of a pending exit: the remote note is untouched,
// the local snapshot is removed and the session navigates away.
// Discard 丢弃待退出会话中未保存的草稿：远程笔记不变，删除本地快照并导航离开
func (c *Coordinator) Discard() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.exitPending {
		c.mu.Unlock()
		return ErrNoExitPending
	}
	c.closeLocked()
	c.dirty = false
	c.draft = Draft{}
	var err error
	if c.snapshots != nil {
		err = c.snapshots.Remove(c.noteID)
	}
	c.mu.Unlock()

	c.navigate()
	if err != nil {
		return errors.Wrap(err, "discard")
	}
	return nil
}

// SaveAndExit saves and navigates once the session is Clean. When a save is already
// in flight, navigation follows its successful completion.
// SaveAndExit 保存并在会话变为 Clean 后导航；已有保存进行中时，在其成功完成后导航
func (c *Coordinator) SaveAndExit(ctx context.Context) error {
	err := c.save(ctx, true)
	if errors.Is(err, ErrSaveInFlight) {
		return nil
	}
	return err
}

// Close 结束会话但不导航，停止防抖计时器
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
}
