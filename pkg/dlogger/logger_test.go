package dlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLogger(t *testing.T) {
	for _, level := range []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		l, err := GetLogger(level)
		require.NoError(t, err)
		require.NotNil(t, l)

		c, err := GetConsoleLogger(level)
		require.NoError(t, err)
		require.NotNil(t, c)
	}

	l, err := GetLogger(LogLevelInfo)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestGetLoggerNone(t *testing.T) {
	l, err := GetLogger(LogLevelNone)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestGetLoggerInvalid(t *testing.T) {
	_, err := GetLogger("verbose")
	require.Error(t, err)

	assert.Panics(t, func() {
		_ = MustGetLogger("verbose")
	})
}
