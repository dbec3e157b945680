package internal

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// contentSelector selects the container holding the itemprop children
const contentSelector = "#watch7-content"

// fieldSetter stores a raw attribute value into a record field
type fieldSetter func(r *VideoRecord, value string) error

// itemProps maps itemprop markers to the record field they populate.
// Markers not listed here are ignored.
var itemProps = map[string]fieldSetter{
	"name":             func(r *VideoRecord, v string) error { r.Title = v; return nil },
	"duration":         func(r *VideoRecord, v string) error { r.Duration = v; return nil },
	"datePublished":    func(r *VideoRecord, v string) error { r.UploadDate = v; return nil },
	"genre":            func(r *VideoRecord, v string) error { r.Genre = v; return nil },
	"paid":             func(r *VideoRecord, v string) error { r.IsPaid = isTrue(v); return nil },
	"unlisted":         func(r *VideoRecord, v string) error { r.IsUnlisted = isTrue(v); return nil },
	"isFamilyFriendly": func(r *VideoRecord, v string) error { r.IsFamilyFriendly = isTrue(v); return nil },
	"thumbnailUrl":     func(r *VideoRecord, v string) error { r.ThumbnailURL = v; return nil },
	"interactionCount": setViews,
	"channelId":        func(r *VideoRecord, v string) error { r.ChannelID = v; return nil },
	"description":      func(r *VideoRecord, v string) error { r.Description = v; return nil },
	"playerType":       func(r *VideoRecord, v string) error { r.PlayerType = v; return nil },
	"regionsAllowed":   func(r *VideoRecord, v string) error { r.RegionsAllowed = v; return nil },
}

// Extractor turns watch page markup into a VideoRecord.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor that reports fallbacks to logger.
// A nil logger discards them.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{logger: logger}
}

// Extract parses raw watch page markup for the given video ID.
//
// It fails with *MissingContentError when the content container is absent or
// empty, and with *ExtractionError when the markup cannot be parsed or an
// essential field is malformed. Likes and dislikes never cause a failure;
// they fall back to 0.
func (e *Extractor) Extract(id string, raw []byte) (VideoRecord, error) {
	if id == "" {
		return VideoRecord{}, ErrEmptyVideoID
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return VideoRecord{}, &ExtractionError{ID: id, Err: fmt.Errorf("parsing markup: %w", err)}
	}

	record := VideoRecord{
		ID:  id,
		URL: WatchURL(id),
	}

	if err := e.extractFields(id, doc, &record); err != nil {
		return VideoRecord{}, err
	}

	record.Likes, record.Dislikes = e.recoverStatistics(id, doc)

	return record, nil
}

// extractFields reads the direct itemprop children of the content container
func (e *Extractor) extractFields(id string, doc *goquery.Document, record *VideoRecord) error {
	container := doc.Find(contentSelector).First()
	if container.Length() == 0 || countChildNodes(container.Get(0)) <= 1 {
		return &MissingContentError{ID: id}
	}

	var fieldErr error
	container.ChildrenFiltered("[itemprop]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		marker, _ := s.Attr("itemprop")
		set, ok := itemProps[marker]
		if !ok {
			return true
		}

		value, ok := s.Attr(valueAttr(marker))
		if !ok {
			e.logger.Debug("itemprop without value", "video_id", id, "itemprop", marker)
			return true
		}

		if err := set(record, value); err != nil {
			fieldErr = &ExtractionError{ID: id, Field: marker, Err: err}
			return false
		}
		return true
	})

	return fieldErr
}

// valueAttr returns the attribute holding the value for an itemprop marker
func valueAttr(marker string) string {
	if marker == "thumbnailUrl" {
		return "href"
	}
	return "content"
}

// countChildNodes counts all direct children of n, text nodes included
func countChildNodes(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// isTrue treats only "false" and "0" (any case) as false
func isTrue(value string) bool {
	switch strings.ToLower(value) {
	case "false", "0":
		return false
	}
	return true
}

// setViews parses interactionCount; surrounding whitespace is ignored but
// thousands separators are not stripped here
func setViews(r *VideoRecord, value string) error {
	views, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing view count %q: %w", value, err)
	}
	if views < 0 {
		return errors.New("negative view count")
	}
	r.Views = views
	return nil
}
