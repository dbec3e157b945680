package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timedTextBody = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">Hello &amp;amp; welcome</text>
<text start="2.6" dur="1.4">to the &amp;#39;show&amp;#39;</text>
<text start="4" dur="1"> </text>
</transcript>`

// playerPage embeds a ytInitialPlayerResponse with the given caption tracks
func playerPage(tracks string) []byte {
	return []byte(`<html><body><script>var ytInitialPlayerResponse = {"videoDetails":{"videoId":"` + testVideoID + `"},` +
		`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` + tracks + `]}}};var meta = {};</script></body></html>`)
}

func track(baseURL, lang, kind string) string {
	return fmt.Sprintf(`{"baseUrl":%q,"languageCode":%q,"kind":%q}`, baseURL, lang, kind)
}

func TestTranscriptPrefersManualTrack(t *testing.T) {
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write([]byte(timedTextBody))
	}))
	defer srv.Close()

	page := playerPage(track(srv.URL+"/asr", "en", "asr") + "," +
		track(srv.URL+"/de", "de", "") + "," +
		track(srv.URL+"/manual", "en-GB", ""))

	tf := NewTranscriptFetcher(NewHTTPFetcher("", "", time.Second, WithRateLimit(0)), "en")
	transcript, err := tf.Transcript(context.Background(), testVideoID, page)
	require.NoError(t, err)

	assert.Equal(t, "/manual", requested)
	assert.Equal(t, testVideoID, transcript.VideoID)
	assert.Equal(t, "en-GB", transcript.LanguageCode)
	assert.False(t, transcript.IsGenerated)
	assert.Equal(t, []Segment{
		{Text: "Hello & welcome", Start: 0.5, Duration: 2.1},
		{Text: "to the 'show'", Start: 2.6, Duration: 1.4},
	}, transcript.Segments)
	assert.Equal(t, "Hello & welcome\nto the 'show'", transcript.Text())
}

func TestTranscriptFallsBackToGenerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(timedTextBody))
	}))
	defer srv.Close()

	page := playerPage(track(srv.URL+"/asr", "en", "asr"))

	tf := NewTranscriptFetcher(NewHTTPFetcher("", "", time.Second, WithRateLimit(0)), "")
	transcript, err := tf.Transcript(context.Background(), testVideoID, page)
	require.NoError(t, err)

	assert.True(t, transcript.IsGenerated)
	assert.Equal(t, srv.URL+"/asr", transcript.URL)
}

func TestTranscriptNoCaptions(t *testing.T) {
	tf := NewTranscriptFetcher(NewHTTPFetcher("", "", time.Second), "en")

	tests := []struct {
		name string
		page []byte
	}{
		{"no captions object", []byte(`<script>var ytInitialPlayerResponse = {"videoDetails":{}};</script>`)},
		{"other language only", playerPage(track("http://127.0.0.1/x", "fr", ""))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tf.Transcript(context.Background(), testVideoID, tt.page)
			assert.ErrorIs(t, err, ErrNoCaptions)
		})
	}
}

func TestTranscriptWithoutPlayerResponse(t *testing.T) {
	tf := NewTranscriptFetcher(NewHTTPFetcher("", "", time.Second), "en")

	_, err := tf.Transcript(context.Background(), testVideoID, []byte(`<html></html>`))
	assert.ErrorContains(t, err, "player response not found")
}

func TestMatchesLanguage(t *testing.T) {
	assert.True(t, matchesLanguage("en", "en"))
	assert.True(t, matchesLanguage("EN", "en"))
	assert.True(t, matchesLanguage("en-US", "en"))
	assert.False(t, matchesLanguage("eng", "en"))
	assert.False(t, matchesLanguage("de", "en"))
}

func TestParseTimedTextInvalid(t *testing.T) {
	_, err := parseTimedText([]byte("<transcript><text"))
	assert.Error(t, err)
}
