package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/openschema/logger"
)

func TestDefaultIsSilent(t *testing.T) {
	assert.False(t, logger.L().Debug().Enabled())
}

func TestSetAndReset(t *testing.T) {
	var buf bytes.Buffer
	logger.Set(logger.NewWithWriter(&buf, "debug"))
	defer logger.Set(nil)

	logger.L().Debug().Str("doc", "default").Msg("component registered")
	assert.Contains(t, buf.String(), `"doc":"default"`)
	assert.Contains(t, buf.String(), `"lib":"openschema"`)

	logger.Set(nil)
	logger.L().Error().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "chatty")
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
