package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "production", "")

	log.Debug("hidden")
	log.Info("team created", "team_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "team created", line["msg"])
	assert.Equal(t, "abc", line["team_id"])
}

func TestNewLogger_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "development", "error")

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("WARNING")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, ok = ParseLevel("verbose")
	assert.False(t, ok)
}
