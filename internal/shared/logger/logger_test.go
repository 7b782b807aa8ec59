package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamberirc/chamberbnc/internal/shared/config"
)

func textLogger(buf *bytes.Buffer, levels ...slog.Level) Interface {
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return Wrap(slog.New(NewConditionalSourceHandler(h, levels...)))
}

func TestConditionalSourceHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(l Interface)
		wantSource bool
	}{
		{name: "info has no source", log: func(l Interface) { l.Infow("joined") }, wantSource: false},
		{name: "warn has source", log: func(l Interface) { l.Warnw("slow send") }, wantSource: true},
		{name: "error has source", log: func(l Interface) { l.Errorw("save failed") }, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(textLogger(&buf, slog.LevelWarn, slog.LevelError))
			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
		})
	}
}

func TestSource_PointsAtCaller(t *testing.T) {
	var buf bytes.Buffer
	textLogger(&buf, slog.LevelWarn).Warnw("slow send")

	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestForNetwork_AddsAttribute(t *testing.T) {
	var buf bytes.Buffer

	ForNetwork(textLogger(&buf), "Libera").Infow("connected", "server", "irc.libera.chat")

	out := buf.String()
	assert.Contains(t, out, "network=Libera")
	assert.Contains(t, out, "server=irc.libera.chat")
}

func TestNamed_Nests(t *testing.T) {
	var buf bytes.Buffer

	textLogger(&buf).Named("irc").Named("control").With("node", "alpha").Debugw("reply")

	out := buf.String()
	assert.Contains(t, out, "component=irc.control")
	assert.Contains(t, out, "node=alpha")
}

func TestInit_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	require.NoError(t, Init(&config.LoggerConfig{Level: "debug", Format: "json", OutputPath: path}))
	t.Cleanup(reset)

	NewLogger().Debugw("request submitted", "id", 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"request submitted"`)
	assert.Contains(t, string(data), `"id":1`)
	assert.Contains(t, string(data), `"source"`)
}

func TestInit_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	require.NoError(t, Init(&config.LoggerConfig{Level: "warn", Format: "json", OutputPath: path}))
	t.Cleanup(reset)

	NewLogger().Infow("noise")
	NewLogger().Warnw("signal")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "noise")
	assert.Contains(t, string(data), "signal")
}

func TestGet_DefaultsBeforeInit(t *testing.T) {
	reset()
	t.Cleanup(reset)
	assert.NotNil(t, Get())
}
