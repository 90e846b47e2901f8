package task

import (
	"context"
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/app"
	"github.com/haierkeys/ecrit-note-service/pkg/cache"
	"github.com/haierkeys/ecrit-note-service/pkg/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CacheSweepTask 定期清理内存缓存中的过期条目
type CacheSweepTask struct {
	coordinator *cache.Coordinator
	schedule    cron.Schedule
	logger      *zap.Logger
}

// NewCacheSweepTask expr 使用标准 cron 语法，也支持 @every 1m 这类描述符
func NewCacheSweepTask(coordinator *cache.Coordinator, expr string, lg *zap.Logger) (*CacheSweepTask, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "cache sweep schedule %q", expr)
	}
	return &CacheSweepTask{coordinator: coordinator, schedule: schedule, logger: lg}, nil
}

func (t *CacheSweepTask) Name() string {
	return "CacheSweep"
}

func (t *CacheSweepTask) Schedule() cron.Schedule {
	return t.schedule
}

func (t *CacheSweepTask) LoopInterval() time.Duration {
	return 0
}

func (t *CacheSweepTask) IsStartupRun() bool {
	return false
}

func (t *CacheSweepTask) Run(ctx context.Context) error {
	if n := t.coordinator.Sweep(); n > 0 {
		t.logger.Debug("expired cache entries removed",
			zap.String(logger.FieldTask, t.Name()),
			zap.Int("count", n))
	}
	return nil
}

func init() {
	RegisterWithApp(func(a *app.App) (Task, error) {
		// redis 等后端自行处理过期
		if a.CacheSweeper() == nil {
			return nil, nil
		}
		t, err := NewCacheSweepTask(a.Cache, a.Config().Cache.SweepSchedule, a.Logger())
		if err != nil {
			return nil, err
		}
		return t, nil
	})
}
