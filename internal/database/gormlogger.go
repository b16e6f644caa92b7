package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/orator/internal/logger"
)

// gormLogAdapter bridges GORM's logger interface onto the service logger.
type gormLogAdapter struct {
	log           *logger.Logger
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger, slowThreshold time.Duration) gormlogger.Interface {
	return &gormLogAdapter{log: log, slowThreshold: slowThreshold}
}

func (a *gormLogAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return a }

func (a *gormLogAdapter) Info(_ context.Context, msg string, args ...interface{}) {
	a.log.Info(msg, logger.Fields("args", args))
}

func (a *gormLogAdapter) Warn(_ context.Context, msg string, args ...interface{}) {
	a.log.Warn(msg, logger.Fields("args", args))
}

func (a *gormLogAdapter) Error(_ context.Context, msg string, args ...interface{}) {
	a.log.Error(msg, logger.Fields("args", args))
}

func (a *gormLogAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.log.Error("Query failed", logger.Fields(
			"sql", sql, "rows", rows, "error", err.Error(),
		))
	case elapsed > a.slowThreshold:
		a.log.Warn("Slow query", logger.Fields(
			"sql", sql, "rows", rows, logger.FieldDuration, elapsed.Milliseconds(),
		))
	default:
		a.log.Debug("Query", logger.Fields(
			"sql", sql, "rows", rows, logger.FieldDuration, elapsed.Milliseconds(),
		))
	}
}
