package utils

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := setLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "guild", "1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"guild":"1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestLogEmbed(t *testing.T) {
	e := logEmbed(Error, "Score", "", strings.Repeat("x", 2000))
	assert.Equal(t, "ERROR Log", e.Title)
	assert.Equal(t, 15158332, e.Color)
	assert.Equal(t, "-", e.Fields[1].Value)
	assert.Len(t, e.Fields[2].Value, 1003)
}

func TestLogWarnWithoutChannel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	setLogger(&buf, "info", "json")
	LogWarn(nil, "", "Scheduler", "ReconcileSlots", "2 mappings drifted")

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"op":"ReconcileSlots"`)
}
