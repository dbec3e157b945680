package internal

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverStatistic(t *testing.T) {
	script := statisticsScript("12,345,678", "9,001")

	likes, err := recoverStatistic("like", script)
	require.NoError(t, err)
	assert.Equal(t, int64(12345678), likes)

	dislikes, err := recoverStatistic("dislike", script)
	require.NoError(t, err)
	assert.Equal(t, int64(9001), dislikes)
}

func TestRecoverStatisticFailures(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"no upper-case token", `var ytInitialData = {"label":"12 likes"};`},
		{"no label in span", `var ytInitialData = {"iconType":"LIKE","text":"12 likes"};`},
		{"not a number", statisticsScript("lots of", "3")},
		{"empty count", `var ytInitialData = {"iconType":"LIKE","label":" likes"};`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := recoverStatistic("like", tt.script)
			assert.Error(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestStatisticsWithoutMarkerAreZero(t *testing.T) {
	logger, logs := newRecordingLogger()
	script := `var somethingElse = {"iconType":"LIKE","label":"12 likes","iconType":"DISLIKE","label":"3 dislikes"};`
	page := watchPage([]itemprop{meta("name", "t")}, script)

	record, err := NewExtractor(logger).Extract(testVideoID, page)
	require.NoError(t, err)

	assert.Zero(t, record.Likes)
	assert.Zero(t, record.Dislikes)

	warnings := logs.byLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, testVideoID, attr(warnings[0], "video_id"))
}

func TestStatisticsFailIndependently(t *testing.T) {
	logger, logs := newRecordingLogger()
	page := watchPage([]itemprop{meta("name", "t")}, statisticsScript("1,500", "not-a-count"))

	record, err := NewExtractor(logger).Extract(testVideoID, page)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), record.Likes)
	assert.Zero(t, record.Dislikes)

	warnings := logs.byLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "dislike", attr(warnings[0], "statistic"))
	assert.Equal(t, testVideoID, attr(warnings[0], "video_id"))
	assert.NotEmpty(t, attr(warnings[0], "error"))
}

func TestStatisticsLikeFailureKeepsDislikes(t *testing.T) {
	logger, logs := newRecordingLogger()
	page := watchPage([]itemprop{meta("name", "t")}, statisticsScript("n/a", "42"))

	record, err := NewExtractor(logger).Extract(testVideoID, page)
	require.NoError(t, err)

	assert.Zero(t, record.Likes)
	assert.Equal(t, int64(42), record.Dislikes)

	warnings := logs.byLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "like", attr(warnings[0], "statistic"))
}

func TestStatisticsUseMarkerScript(t *testing.T) {
	page := watchPage([]itemprop{meta("name", "t")},
		`var ytcfg = {"iconType":"LIKE","label":"999 likes"};`,
		statisticsScript("7", "8"),
	)

	record, err := NewExtractor(nil).Extract(testVideoID, page)
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.Likes)
	assert.Equal(t, int64(8), record.Dislikes)
}

func TestStatisticsNoScripts(t *testing.T) {
	logger, logs := newRecordingLogger()
	record, err := NewExtractor(logger).Extract(testVideoID, watchPage([]itemprop{meta("name", "t")}))
	require.NoError(t, err)

	assert.Zero(t, record.Likes)
	assert.Zero(t, record.Dislikes)
	assert.Len(t, logs.byLevel(slog.LevelWarn), 1)
}

func TestStatisticsSkipMarkerOnlyScript(t *testing.T) {
	logger, logs := newRecordingLogger()
	page := watchPage([]itemprop{meta("name", "t")},
		`window.ytInitialData = window.ytInitialData || {};`,
		statisticsScript("7", "8"),
	)

	record, err := NewExtractor(logger).Extract(testVideoID, page)
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.Likes)
	assert.Equal(t, int64(8), record.Dislikes)
	assert.Empty(t, logs.byLevel(slog.LevelWarn))
}

func TestStatisticsTakenFromDifferentScripts(t *testing.T) {
	logger, logs := newRecordingLogger()
	page := watchPage([]itemprop{meta("name", "t")},
		statisticsScript("5", "unknown"),
		statisticsScript("999", "6"),
	)

	record, err := NewExtractor(logger).Extract(testVideoID, page)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.Likes)
	assert.Equal(t, int64(6), record.Dislikes)
	assert.Empty(t, logs.byLevel(slog.LevelWarn))
}

func TestStatisticsNegativeLikesAreZero(t *testing.T) {
	n, err := recoverStatistic("like", statisticsScript("-5", "3"))
	assert.ErrorContains(t, err, "negative count")
	assert.Zero(t, n)

	logger, logs := newRecordingLogger()
	record, err := NewExtractor(logger).Extract(testVideoID,
		watchPage([]itemprop{meta("name", "t")}, statisticsScript("-5", "3")))
	require.NoError(t, err)

	assert.Zero(t, record.Likes)
	assert.Equal(t, int64(3), record.Dislikes)

	warnings := logs.byLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "like", attr(warnings[0], "statistic"))
}
