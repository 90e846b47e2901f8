package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRecognizer 按顺序执行脚本，脚本用完后阻塞直到 ctx 取消
type scriptedRecognizer struct {
	mu     sync.Mutex
	calls  int
	script []func(ctx context.Context, emit func(string)) error
}

func (r *scriptedRecognizer) Listen(ctx context.Context, emit func(string)) error {
	r.mu.Lock()
	i := r.calls
	r.calls++
	r.mu.Unlock()

	if i < len(r.script) {
		return r.script[i](ctx, emit)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *scriptedRecognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func emitting(segments ...string) func(context.Context, func(string)) error {
	return func(_ context.Context, emit func(string)) error {
		for _, s := range segments {
			emit(s)
		}
		return nil
	}
}

func newDictation(h *harness, r Recognizer) *Dictation {
	return NewDictation(h.c, r, DictationOptions{Clock: h.mock})
}

func TestDictation_DoublePressCapturesAndRestarts(t *testing.T) {
	h := newHarness(t)
	r := &scriptedRecognizer{script: []func(context.Context, func(string)) error{
		emitting("first"),
		emitting("second"),
	}}
	d := newDictation(h, r)

	d.KeyPress()
	d.KeyPress()
	assert.Equal(t, CaptureCapturing, d.State())

	// 识别器两次自行结束后重新启动，第三次阻塞
	assert.Eventually(t, func() bool { return r.Calls() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "body first second", h.c.Snapshot().Draft.Content)
	assert.Equal(t, StateDirty, h.c.State())

	d.KeyPress()
	assert.Eventually(t, func() bool { return d.State() == CaptureIdle }, time.Second, 5*time.Millisecond)
	assert.NoError(t, d.Err())
	assert.Equal(t, 3, r.Calls(), "no restart after stop")
	assert.Equal(t, int32(0), h.navigations())
}

func TestDictation_SinglePressExits(t *testing.T) {
	h := newHarness(t)
	r := &scriptedRecognizer{}
	d := newDictation(h, r)

	d.KeyPress()
	h.mock.Add(DoublePressWindow)

	assert.Eventually(t, func() bool { return h.navigations() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, r.Calls())
	assert.Equal(t, CaptureIdle, d.State())
}

func TestDictation_SinglePressOnDirtyEditorAsksToConfirm(t *testing.T) {
	h := newHarness(t)
	h.c.SetContent("unsaved")
	d := newDictation(h, &scriptedRecognizer{})

	d.KeyPress()
	h.mock.Add(DoublePressWindow)

	assert.Eventually(t, func() bool { return h.c.State() == StateExitPending }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), h.navigations())
}

func TestDictation_PressesOutsideWindowAreSeparate(t *testing.T) {
	h := newHarness(t)
	r := &scriptedRecognizer{}
	d := newDictation(h, r)

	d.KeyPress()
	h.mock.Add(DoublePressWindow)
	assert.Eventually(t, func() bool { return h.navigations() == 1 }, time.Second, 5*time.Millisecond)

	d.KeyPress()
	assert.Equal(t, CaptureIdle, d.State())
	assert.Equal(t, 0, r.Calls())
}

func TestDictation_CaptureErrorLeavesDictation(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("microphone unavailable")
	r := &scriptedRecognizer{script: []func(context.Context, func(string)) error{
		func(context.Context, func(string)) error { return boom },
	}}
	d := newDictation(h, r)

	d.KeyPress()
	d.KeyPress()

	assert.Eventually(t, func() bool { return d.State() == CaptureIdle }, time.Second, 5*time.Millisecond)
	require.ErrorIs(t, d.Err(), boom)
	assert.Equal(t, 1, r.Calls())
	assert.Equal(t, StateClean, h.c.State())
}

func TestDictation_Stop(t *testing.T) {
	h := newHarness(t)
	r := &scriptedRecognizer{}
	d := newDictation(h, r)

	d.Stop()
	d.KeyPress()
	d.KeyPress()
	d.Stop()
	assert.Equal(t, CaptureIdle, d.State())
	assert.NoError(t, d.Err())
}
