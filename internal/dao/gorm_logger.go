package dao

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold 慢查询阈值
const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm logs into zap
// gormLogger 将 gorm 日志输出到 zap
type gormLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
}

// NewGormLogger 创建 gorm 日志适配器，level 取值 silent / error / warn / info
func NewGormLogger(lg *zap.Logger, level string) gormlogger.Interface {
	if lg == nil {
		lg = zap.NewNop()
	}
	l := gormlogger.Warn
	switch level {
	case "silent":
		l = gormlogger.Silent
	case "error":
		l = gormlogger.Error
	case "info":
		l = gormlogger.Info
	}
	return &gormLogger{logger: lg.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: l}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{logger: g.logger, level: level}
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.logger.Sugar().Infof(msg, args...)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.logger.Sugar().Warnf(msg, args...)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.logger.Sugar().Errorf(msg, args...)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.logger.Error("gorm query error",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed), zap.Error(err))
	case elapsed > slowQueryThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.logger.Warn("gorm slow query",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.logger.Debug("gorm query",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
