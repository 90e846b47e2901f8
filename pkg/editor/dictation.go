package editor

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/logger"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// DoublePressWindow 两次按键被视为双击的最大间隔
const DoublePressWindow = 300 * time.Millisecond

// CaptureState 语音输入会话状态
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureCapturing
	CaptureStopping
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureCapturing:
		return "capturing"
	case CaptureStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Recognizer speech source. Listen blocks until the recognizer ends on its own (nil),
// ctx is cancelled, or it fails; each finalized segment is passed to emit.
// Recognizer 语音来源。Listen 阻塞直到识别器自行结束（返回 nil）、ctx 取消或出错；
// 每个最终确定的片段通过 emit 传出
type Recognizer interface {
	Listen(ctx context.Context, emit func(segment string)) error
}

// Dictation turns a single shortcut key into two intents: double press toggles
// speech capture, a lone press exits the editor.
// Dictation 将单个快捷键映射为两种意图：双击切换语音输入，单击退出编辑器
type Dictation struct {
	mu sync.Mutex

	editor     *Coordinator
	recognizer Recognizer
	clock      clock.Clock
	window     time.Duration
	logger     *zap.Logger

	state   CaptureState
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error

	pressPending bool
	pressTimer   *clock.Timer
	pressGen     uint64
}

// DictationOptions Dictation 选项
type DictationOptions struct {
	Clock  clock.Clock
	Window time.Duration
	Logger *zap.Logger
}

// NewDictation 创建语音输入控制器
func NewDictation(editor *Coordinator, recognizer Recognizer, opts DictationOptions) *Dictation {
	d := &Dictation{
		editor:     editor,
		recognizer: recognizer,
		clock:      opts.Clock,
		window:     opts.Window,
		logger:     opts.Logger,
	}
	if d.clock == nil {
		d.clock = clock.New()
	}
	if d.window <= 0 {
		d.window = DoublePressWindow
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// State 当前语音输入状态
func (d *Dictation) State() CaptureState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err 最近一次语音输入失败的错误
func (d *Dictation) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// KeyPress handles one press of the dictation key.
// While capturing it stops capture. While idle, a second press inside the window starts
// capture; a press left alone past the window asks the editor to exit.
// KeyPress 处理一次快捷键按下。
// 录入中时停止录入；空闲时，窗口内的第二次按键开始录入；窗口过后仍为单击则请求退出编辑器
func (d *Dictation) KeyPress() {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case CaptureCapturing:
		d.stopLocked()
		return
	case CaptureStopping:
		return
	}

	if d.pressPending {
		d.pressPending = false
		d.pressGen++
		if d.pressTimer != nil {
			d.pressTimer.Stop()
			d.pressTimer = nil
		}
		d.startLocked()
		return
	}

	d.pressPending = true
	d.pressGen++
	gen := d.pressGen
	d.pressTimer = d.clock.AfterFunc(d.window, func() { d.singlePress(gen) })
}

func (d *Dictation) singlePress(gen uint64) {
	d.mu.Lock()
	if !d.pressPending || gen != d.pressGen || d.state != CaptureIdle {
		d.mu.Unlock()
		return
	}
	d.pressPending = false
	d.pressTimer = nil
	d.mu.Unlock()

	d.editor.RequestExit()
}

func (d *Dictation) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	d.state = CaptureCapturing
	d.stopped = false
	d.lastErr = nil
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.run(ctx, d.done)
}

func (d *Dictation) stopLocked() {
	d.stopped = true
	d.state = CaptureStopping
	if d.cancel != nil {
		d.cancel()
	}
}

// Stop 停止录入并等待录入循环退出
func (d *Dictation) Stop() {
	d.mu.Lock()
	if d.state != CaptureCapturing && d.state != CaptureStopping {
		d.mu.Unlock()
		return
	}
	if d.state == CaptureCapturing {
		d.stopLocked()
	}
	done := d.done
	d.mu.Unlock()
	<-done
}

// run restarts the recognizer each time it ends by itself, unless stop was requested
// run 在识别器自行结束时重新启动，除非已请求停止
func (d *Dictation) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		d.mu.Lock()
		d.state = CaptureIdle
		if d.cancel != nil {
			d.cancel()
			d.cancel = nil
		}
		d.mu.Unlock()
	}()

	for {
		err := d.recognizer.Listen(ctx, d.editor.AppendContent)

		d.mu.Lock()
		stopped := d.stopped
		if err != nil && !stopped {
			d.lastErr = err
		}
		d.mu.Unlock()

		if stopped {
			return
		}
		if err != nil {
			d.logger.Warn("dictation capture failed",
				zap.String(logger.FieldNoteID, d.editor.NoteID()), zap.Error(err))
			return
		}
	}
}
