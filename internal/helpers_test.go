package internal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingHandler keeps every log record so tests can assert on events
type recordingHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
	attrs   []slog.Attr
}

func newRecordingLogger() (*slog.Logger, *recordingHandler) {
	h := &recordingHandler{mu: &sync.Mutex{}, records: &[]slog.Record{}}
	return slog.New(h), h
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{mu: h.mu, records: h.records, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

// byLevel returns the records logged at level
func (h *recordingHandler) byLevel(level slog.Level) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range *h.records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// attr returns the string form of the named attribute of r
func attr(r slog.Record, key string) string {
	var value string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value = a.Value.String()
			return false
		}
		return true
	})
	return value
}

// itemprop is one child of the content container
type itemprop struct {
	marker string
	attr   string
	value  string
}

func meta(marker, value string) itemprop {
	return itemprop{marker: marker, attr: "content", value: value}
}

// watchPage renders a minimal watch page with the given container children
// and script bodies. Children are separated by newlines like real markup.
func watchPage(props []itemprop, scripts ...string) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>page</title></head><body>\n")
	b.WriteString(`<div id="watch7-content" class="watch-main-col">` + "\n")
	for _, p := range props {
		tag := "meta"
		if p.attr == "href" {
			tag = "link"
		}
		fmt.Fprintf(&b, "<%s itemprop=%q %s=%q>\n", tag, p.marker, p.attr, p.value)
	}
	b.WriteString("</div>\n")
	for _, s := range scripts {
		fmt.Fprintf(&b, "<script>%s</script>\n", s)
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

// statisticsScript builds a ytInitialData payload carrying like and dislike labels
func statisticsScript(likeLabel, dislikeLabel string) string {
	return `var ytInitialData = {"contents":{"topLevelButtons":[` +
		`{"toggleButtonRenderer":{"defaultIcon":{"iconType":"LIKE"},"defaultText":{"accessibility":{"accessibilityData":{"label":"` + likeLabel + ` likes"}}}}},` +
		`{"toggleButtonRenderer":{"defaultIcon":{"iconType":"DISLIKE"},"defaultText":{"accessibility":{"accessibilityData":{"label":"` + dislikeLabel + ` dislikes"}}}}}` +
		`]}};`
}

// newTestStore opens an initialized SQLite store in a temp directory
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := OpenDatabase(ctx, "sqlite:///"+filepath.Join(t.TempDir(), "test.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
