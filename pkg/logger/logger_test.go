package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	lg, err := NewLogger(Config{Level: "info", File: file, Production: true})
	require.NoError(t, err)

	lg.Info("hello", zap.String(FieldNoteID, "n1"))
	lg.Debug("hidden")
	_ = lg.Sync()

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"noteId":"n1"`)
	assert.NotContains(t, string(raw), "hidden")
}
