package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(level LogLevel, json bool) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&Config{Level: level, Output: &buf, JSON: json, TimeFormat: "15:04:05"}), &buf
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the attached logger", func(t *testing.T) {
		want := NewLogger(TestConfig())
		ctx := ContextWithLogger(context.Background(), want)
		assert.Equal(t, want, FromContext(ctx))
	})
	t.Run("Should fall back to the default logger", func(t *testing.T) {
		require.NotNil(t, FromContext(context.Background()))
		ctx := context.WithValue(context.Background(), LoggerCtxKey, "not a logger")
		require.NotNil(t, FromContext(ctx))
		require.NotNil(t, FromContext(nil)) //nolint:staticcheck // nil context is tolerated
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("Should default unknown levels to info", func(t *testing.T) {
		assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
		assert.Equal(t, WarnLevel, ParseLevel(" warn "))
		assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	})
}

func TestLogger(t *testing.T) {
	t.Run("Should filter below the configured level", func(t *testing.T) {
		l, buf := bufferLogger(WarnLevel, false)
		l.Info("grid loaded")
		l.Warn("stale response dropped")
		assert.NotContains(t, buf.String(), "grid loaded")
		assert.Contains(t, buf.String(), "stale response dropped")
	})
	t.Run("Should emit JSON with fields", func(t *testing.T) {
		l, buf := bufferLogger(InfoLevel, true)
		l.With("rut", "1-9").Info("cell updated", "column", "email")
		assert.Contains(t, buf.String(), `"rut":"1-9"`)
		assert.Contains(t, buf.String(), `"column":"email"`)
	})
	t.Run("Should stay silent when disabled", func(t *testing.T) {
		l, buf := bufferLogger(DisabledLevel, false)
		l.Error("boom")
		assert.Empty(t, buf.String())
	})
	t.Run("Should detect the test binary", func(t *testing.T) {
		assert.True(t, IsTestEnvironment())
	})
}

func TestSetup(t *testing.T) {
	t.Run("Should write to the log file and install the default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "municrud.log")
		l, closer, err := Setup(Options{Level: "debug", File: path})
		require.NoError(t, err)
		t.Cleanup(func() { SetDefault(nil) })
		l.Debug("written to file")
		require.NoError(t, closer.Close())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written to file")
		assert.Equal(t, l, GetDefault())
	})
}
