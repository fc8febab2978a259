// Package gormlog routes GORM's SQL logging through zap.
package gormlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/mmoitems/audit"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger implements gorm's logger.Interface on top of zap. Record-not-found
// is never reported; GORM returns it to the caller as a normal result.
type Logger struct {
	log       *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

// New returns a Warn-level logger. slowQuery <= 0 disables slow-query warnings.
func New(log *zap.Logger, slowQuery time.Duration) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{
		log:       log.Named("gorm").WithOptions(zap.AddCallerSkip(3)),
		level:     gormlogger.Warn,
		slowQuery: slowQuery,
	}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *Logger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...), l.traceField(ctx)...)
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...), l.traceField(ctx)...)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...), l.traceField(ctx)...)
	}
}

func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error("query failed", l.queryFields(ctx, sql, rows, elapsed, zap.Error(err))...)
	case l.slowQuery > 0 && elapsed > l.slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query", l.queryFields(ctx, sql, rows, elapsed, zap.Duration("threshold", l.slowQuery))...)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug("query", l.queryFields(ctx, sql, rows, elapsed)...)
	}
}

func (l *Logger) traceField(ctx context.Context) []zap.Field {
	if id := audit.TraceIDFrom(ctx); id != "" {
		return []zap.Field{zap.String("trace_id", id)}
	}
	return nil
}

func (l *Logger) queryFields(ctx context.Context, sql string, rows int64, elapsed time.Duration, extra ...zap.Field) []zap.Field {
	fields := append(l.traceField(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed))
	return append(fields, extra...)
}
