package task

import (
	"context"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/logger"
	"github.com/haierkeys/ecrit-note-service/pkg/safe_close"

	"github.com/benbjohnson/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔
	IsStartupRun() bool            // 是否立即执行一次
}

// ScheduledTask is driven by a cron schedule instead of LoopInterval
// ScheduledTask 按 cron 表达式调度，忽略 LoopInterval
type ScheduledTask interface {
	Task
	Schedule() cron.Schedule
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	clock  clock.Clock
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		clock:  clock.New(),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Len 已注册任务数
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

// nextDelay 距离下一次执行的等待时间，<=0 表示不再执行
func (s *Scheduler) nextDelay(task Task) time.Duration {
	if st, ok := task.(ScheduledTask); ok {
		now := s.clock.Now()
		next := st.Schedule().Next(now)
		if next.IsZero() {
			return 0
		}
		if d := next.Sub(now); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return task.LoopInterval()
}

// runOnce 执行一次任务，panic 被记录而不会终止调度
func (s *Scheduler) runOnce(task Task, trigger string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String(logger.FieldTask, task.Name()),
				zap.String("trigger", trigger),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	start := s.clock.Now()
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String(logger.FieldTask, task.Name()),
			zap.String("trigger", trigger),
			zap.Error(err))
		return
	}
	s.logger.Debug("task finished",
		zap.String(logger.FieldTask, task.Name()),
		zap.String("trigger", trigger),
		zap.Duration(logger.FieldDuration, s.clock.Since(start)))
}

// startTask 启动单个任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			go s.runOnce(task, "startup")
		}

		for {
			delay := s.nextDelay(task)
			if delay <= 0 {
				return
			}

			timer := s.clock.Timer(delay)
			select {
			case <-timer.C:
				s.runOnce(task, "loop")
			case <-closeSignal:
				timer.Stop()
				s.logger.Info("task stopped", zap.String(logger.FieldTask, task.Name()))
				return
			}
		}
	})
}
