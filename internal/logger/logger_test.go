package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, level("debug"))
	assert.Equal(t, zapcore.WarnLevel, level("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, level("error"))
	assert.Equal(t, zapcore.InfoLevel, level("chatty"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("FLAME_LOG_LEVEL", "ERROR")
	t.Setenv("FLAME_LOG_FORMAT", "json")

	assert.False(t, FromEnv(false).Core().Enabled(zapcore.WarnLevel))
	assert.True(t, FromEnv(true).Core().Enabled(zapcore.DebugLevel))
}
