package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/milk9111/tankgame/config"
)

func TestConfig(t *testing.T) {
	cases := []struct {
		name     string
		in       config.LoggingConfig
		level    zapcore.Level
		encoding string
	}{
		{"console debug", config.LoggingConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel, "console"},
		{"json warn", config.LoggingConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel, "json"},
		{"unknown level", config.LoggingConfig{Level: "loud"}, zapcore.InfoLevel, "console"},
		{"empty", config.LoggingConfig{}, zapcore.InfoLevel, "console"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Config(c.in)
			assert.Equal(t, c.level, cfg.Level.Level())
			assert.Equal(t, c.encoding, cfg.Encoding)
		})
	}
}

func TestConsoleIsQuiet(t *testing.T) {
	cfg := Config(config.LoggingConfig{Format: "console"})
	assert.True(t, cfg.DisableCaller)
	assert.True(t, cfg.DisableStacktrace)
	assert.Equal(t, "  ", cfg.EncoderConfig.ConsoleSeparator)
}

func TestNew(t *testing.T) {
	log, err := New(config.Default().Logging)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
