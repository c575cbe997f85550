package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core)).With(zap.String("component", "contact"))

	l.Debug("hidden")
	l.Info("stored", zap.Int64("id", 7))
	l.Error("failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "stored", entries[0].Message)
	assert.Equal(t, map[string]any{"component": "contact", "id": int64(7)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestLogger_Zero(t *testing.T) {
	var l Logger
	assert.NotPanics(t, func() {
		l.Info("dropped")
		l.With(zap.String("k", "v")).Warn("dropped")
	})
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("loud", "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "catalog.log")
	l, err := NewLogger("info", path)
	require.NoError(t, err)
	l.Info("catalog loaded", zap.Int("categories", 5))
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"catalog loaded"`)
	assert.Contains(t, string(data), `"categories":5`)
}
