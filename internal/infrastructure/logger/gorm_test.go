package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("errors are logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 0)
		l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
		assert.Equal(t, 1, recorded.FilterMessage("SQL error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, 0)
		l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.FilterMessage("SQL error").Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)
		l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
		assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, 0).LogMode(gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
		assert.Zero(t, recorded.Len())
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("warn"))
	assert.Equal(t, gormlogger.Warn, GormLevel(""))
}
