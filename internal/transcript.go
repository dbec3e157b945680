package internal

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const playerResponseMarker = "ytInitialPlayerResponse"

// Segment is one caption line with its timing in seconds
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is a downloaded caption track
type Transcript struct {
	VideoID      string    `json:"video_id"`
	URL          string    `json:"url"`
	LanguageCode string    `json:"language_code"`
	IsGenerated  bool      `json:"is_generated"`
	Segments     []Segment `json:"segments"`
}

// Text joins the segment lines with newlines
func (t *Transcript) Text() string {
	return FormatTranscript(t.Segments)
}

// FormatTranscript renders segments as plain text, one line per segment
func FormatTranscript(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, s.Text)
	}
	return strings.Join(lines, "\n")
}

// captionTrack is the subset of a captionTracks entry we use
type captionTrack struct {
	BaseURL      string
	LanguageCode string
	Generated    bool
}

// TranscriptFetcher downloads caption tracks referenced by a watch page
type TranscriptFetcher struct {
	http     *HTTPFetcher
	language string
}

// NewTranscriptFetcher creates a transcript fetcher preferring the given language
func NewTranscriptFetcher(fetcher *HTTPFetcher, language string) *TranscriptFetcher {
	if language == "" {
		language = "en"
	}
	return &TranscriptFetcher{http: fetcher, language: language}
}

// Transcript finds a caption track in page and downloads it.
// Manually created tracks win over auto-generated ones.
func (tf *TranscriptFetcher) Transcript(ctx context.Context, id string, page []byte) (*Transcript, error) {
	tracks, err := captionTracks(page)
	if err != nil {
		return nil, fmt.Errorf("reading caption tracks for %s: %w", id, err)
	}

	track, ok := selectTrack(tracks, tf.language)
	if !ok {
		return nil, fmt.Errorf("%w for %s in language %q", ErrNoCaptions, id, tf.language)
	}

	body, err := tf.http.get(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("downloading captions for %s: %w", id, err)
	}

	segments, err := parseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("parsing captions for %s: %w", id, err)
	}

	return &Transcript{
		VideoID:      id,
		URL:          track.BaseURL,
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.Generated,
		Segments:     segments,
	}, nil
}

// captionTracks reads the caption track list from the player response in page
func captionTracks(page []byte) ([]captionTrack, error) {
	raw, err := playerResponse(page)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(raw, "captions.playerCaptionsTracklistRenderer.captionTracks")
	if !result.Exists() {
		return nil, ErrNoCaptions
	}

	var tracks []captionTrack
	result.ForEach(func(_, t gjson.Result) bool {
		baseURL := t.Get("baseUrl").String()
		if baseURL == "" {
			return true
		}
		tracks = append(tracks, captionTrack{
			BaseURL:      baseURL,
			LanguageCode: t.Get("languageCode").String(),
			Generated:    t.Get("kind").String() == "asr",
		})
		return true
	})
	return tracks, nil
}

// playerResponse returns the JSON object assigned to ytInitialPlayerResponse
func playerResponse(page []byte) (json.RawMessage, error) {
	s := string(page)
	i := strings.Index(s, playerResponseMarker)
	if i < 0 {
		return nil, errors.New("player response not found")
	}
	j := strings.IndexByte(s[i:], '{')
	if j < 0 {
		return nil, errors.New("player response has no object")
	}

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s[i+j:])).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding player response: %w", err)
	}
	return raw, nil
}

func selectTrack(tracks []captionTrack, language string) (captionTrack, bool) {
	var generated *captionTrack
	for i, t := range tracks {
		if !matchesLanguage(t.LanguageCode, language) {
			continue
		}
		if !t.Generated {
			return t, true
		}
		if generated == nil {
			generated = &tracks[i]
		}
	}
	if generated != nil {
		return *generated, true
	}
	return captionTrack{}, false
}

// matchesLanguage accepts exact codes and regional variants ("en" matches "en-GB")
func matchesLanguage(code, language string) bool {
	return strings.EqualFold(code, language) || strings.HasPrefix(strings.ToLower(code), strings.ToLower(language)+"-")
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText decodes a timedtext XML document into segments
func parseTimedText(body []byte) ([]Segment, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segments = append(segments, Segment{Text: text, Start: start, Duration: dur})
	}
	return segments, nil
}
