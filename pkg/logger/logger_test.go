package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeRejectsUnknownLevel(t *testing.T) {
	err := Initialize("loud", false)
	assert.Error(t, err)
}

func TestInitializeWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice.log")
	require.NoError(t, InitializeWithOptions(Options{Level: "debug", FilePath: path}))
	t.Cleanup(func() { Replace(zap.NewNop()) })

	Info("hello %s", "world")
	Sync()
	assert.FileExists(t, path)
}

func TestPrintfHelpersRouteByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(zap.NewNop()) })

	Debug("dropped %d", 1)
	Info("request %s done", "abc")
	Warn("slow backend: %dms", 1500)
	Error("conversion failed: %v", "boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "request abc done", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "conversion failed: boom", entries[2].Message)
}
