package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONAtConfiguredLevel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "warn", Encoding: "json", OutputPath: out})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log.Info("dropped")
	log.Warn("kept", zap.String("platform", "Twitter"))
	_ = log.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"kept"`)
	assert.Contains(t, lines[0], `"level":"WARN"`)
	assert.Contains(t, lines[0], `"timestamp"`)
}

func TestNew_FallsBackOnBadValues(t *testing.T) {
	log, err := New(Config{Level: "loud", Encoding: "xml"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
