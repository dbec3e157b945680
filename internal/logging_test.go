package internal

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSONFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "ytsum.log")
	config := &Config{Env: "test", LogFile: logFile, Quiet: true}

	logger, closer, err := NewLogger(config)
	require.NoError(t, err)

	logger.Debug("fetching watch page", "video_id", testVideoID)
	logger.Warn("statistic not recovered, using 0", "statistic", "like")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "ytsum", entry["app"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, testVideoID, entry["video_id"])
}

func TestNewLoggerQuietWithoutFile(t *testing.T) {
	logger, closer, err := NewLogger(&Config{Quiet: true})
	require.NoError(t, err)
	defer closer.Close()

	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestFanoutHandler(t *testing.T) {
	first, firstLogs := newRecordingLogger()
	second, secondLogs := newRecordingLogger()

	logger := slog.New(fanoutHandler{first.Handler(), second.Handler()}).With("video_id", testVideoID)
	logger.Info("stored transcript")

	for _, logs := range []*recordingHandler{firstLogs, secondLogs} {
		records := logs.byLevel(slog.LevelInfo)
		require.Len(t, records, 1)
		assert.Equal(t, "stored transcript", records[0].Message)
		assert.Equal(t, testVideoID, attr(records[0], "video_id"))
	}
}
