package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	} {
		logger, err := New(tc.level)
		require.NoError(t, err, tc.level)
		assert.True(t, logger.Core().Enabled(tc.want), tc.level)
		if tc.want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(tc.want-1), tc.level)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud")
	assert.ErrorContains(t, err, "invalid log level")
}
