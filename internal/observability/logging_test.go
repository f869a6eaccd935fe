package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/complaint-service/internal/config"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel(" DEBUG "))
	require.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	logger, err := NewLogger(&config.Config{
		App:    config.AppConfig{Name: "complaint-service", Env: "production"},
		Logger: config.LoggerConfig{Level: "error"},
	})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
