package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/pixaro/internal/logger"
)

func TestProductionLogsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Init(logger.Options{Output: &buf})

	log.Debug("hidden")
	slog.Info("post created", "post_id", "p1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "post created", entry["msg"])
	assert.Equal(t, "pixaro", entry["app"])
	assert.Equal(t, "p1", entry["post_id"])
}

func TestDevelopmentLogsTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Options{Development: true, Output: &buf})

	slog.Debug("cache miss", "key", "pixaro:timeline")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="cache miss"`)
	assert.Contains(t, out, "key=pixaro:timeline")
	assert.Same(t, logger.Log, slog.Default())
}
