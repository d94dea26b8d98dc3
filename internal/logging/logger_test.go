package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/gisce/clicksign/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewAcceptsKnownLevelsAndFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, level.Level())

	logger.Debug("hidden")
	logger.Info("visible", slog.Int64("signatory_id", 4412))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "visible", entry["msg"])
	require.Equal(t, "clicksign", entry["app"])
}

func TestLevelVarChangesVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Info("before")
	require.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	logger.Debug("after")
	require.Contains(t, buf.String(), "msg=after")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "verbose"}, nil)
	require.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Format: "binary"}, nil)
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		require.Equal(t, want, got, name)
	}
}
