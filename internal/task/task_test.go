package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/cache"
	"github.com/haierkeys/ecrit-note-service/pkg/safe_close"

	"github.com/benbjohnson/clock"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	runs     int32
	interval time.Duration
	startup  bool
	err      error
	panics   bool
}

func (t *countingTask) Name() string                { return "counting" }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return t.startup }
func (t *countingTask) Run(context.Context) error {
	atomic.AddInt32(&t.runs, 1)
	if t.panics {
		panic("boom")
	}
	return t.err
}

type scheduledTask struct {
	countingTask
	schedule cron.Schedule
}

func (t *scheduledTask) Schedule() cron.Schedule { return t.schedule }

func newTestScheduler(mock *clock.Mock) (*Scheduler, *safe_close.SafeClose) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	s.clock = mock
	return s, sc
}

func TestScheduler_LoopInterval(t *testing.T) {
	mock := clock.NewMock()
	s, sc := newTestScheduler(mock)

	task := &countingTask{interval: time.Minute, err: errors.New("keeps going")}
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool {
		mock.Add(time.Minute)
		return atomic.LoadInt32(&task.runs) >= 2
	}, time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestScheduler_StartupRunAndPanicRecovery(t *testing.T) {
	mock := clock.NewMock()
	s, sc := newTestScheduler(mock)

	task := &countingTask{startup: true, panics: true}
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&task.runs) == 1
	}, time.Second, 5*time.Millisecond)

	// LoopInterval 为 0 时任务只在启动时执行
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestScheduler_CronSchedule(t *testing.T) {
	mock := clock.NewMock()
	s, sc := newTestScheduler(mock)

	schedule, err := cron.ParseStandard("@every 30s")
	require.NoError(t, err)
	task := &scheduledTask{schedule: schedule}
	s.AddTask(task)
	assert.Equal(t, 1, s.Len())
	s.Start()

	assert.Eventually(t, func() bool {
		mock.Add(30 * time.Second)
		return atomic.LoadInt32(&task.runs) >= 1
	}, time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestCacheSweepTask(t *testing.T) {
	_, err := NewCacheSweepTask(nil, "not a schedule", zap.NewNop())
	assert.Error(t, err)

	store := cache.NewMemoryStore(10)
	coordinator := cache.NewCoordinator(store)
	ctx := context.Background()
	coordinator.Set(ctx, "short", "v", time.Millisecond)
	coordinator.Set(ctx, "long", "v", time.Hour)

	task, err := NewCacheSweepTask(coordinator, "*/5 * * * *", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "CacheSweep", task.Name())
	assert.False(t, task.IsStartupRun())

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, task.Run(ctx))
	assert.Equal(t, 1, store.Len())
}
