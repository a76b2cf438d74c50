package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/storm/internal/config"
	"github.com/plus3/storm/internal/logging"
)

func TestConfig(t *testing.T) {
	t.Run("json uses the production encoder", func(t *testing.T) {
		cfg := logging.Config(config.LoggingConfig{Level: "warn", Format: "json"})
		assert.Equal(t, "json", cfg.Encoding)
		assert.Equal(t, zapcore.WarnLevel, cfg.Level.Level())
	})

	t.Run("console is the default", func(t *testing.T) {
		cfg := logging.Config(config.LoggingConfig{Level: "debug"})
		assert.Equal(t, "console", cfg.Encoding)
		assert.True(t, cfg.DisableCaller)
		assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		cfg := logging.Config(config.LoggingConfig{Level: "loud"})
		assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	})
}

func TestNew(t *testing.T) {
	logger, err := logging.New(config.Default().Logging)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
