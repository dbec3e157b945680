package internal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Like and dislike counts are not exposed as itemprops. They are mined from
// the ytInitialData script, so this file is coupled to that payload's layout
// and expected to break when it changes. Failures here fall back to 0.

// statisticsMarker identifies the script carrying the interaction statistics
const statisticsMarker = "ytInitialData"

var (
	scriptMatcher = cascadia.MustCompile("script")
	labelRE       = regexp.MustCompile(`label(.*)`)

	errStatisticSpan  = errors.New("statistic span not found")
	errStatisticLabel = errors.New("label not found in statistic span")
)

// recoverStatistics returns likes and dislikes, each independently defaulting to 0.
// Every script mentioning the marker is a candidate; each statistic takes the
// first candidate it can be recovered from.
func (e *Extractor) recoverStatistics(id string, doc *goquery.Document) (likes, dislikes int64) {
	scripts := statisticsScripts(doc)
	if len(scripts) == 0 {
		e.logger.Warn("statistics script not found, using 0 for likes and dislikes",
			"video_id", id, "marker", statisticsMarker)
		return 0, 0
	}

	return e.statisticOrZero(id, "like", scripts), e.statisticOrZero(id, "dislike", scripts)
}

func (e *Extractor) statisticOrZero(id, label string, scripts []string) int64 {
	var err error
	for _, script := range scripts {
		var n int64
		if n, err = recoverStatistic(label, script); err == nil {
			return n
		}
	}
	e.logger.Warn("statistic not recovered, using 0",
		"video_id", id, "statistic", label, "candidates", len(scripts), "error", err)
	return 0
}

// statisticsScripts returns the text of every script containing the marker, in page order
func statisticsScripts(doc *goquery.Document) []string {
	var scripts []string
	doc.FindMatcher(scriptMatcher).Each(func(_ int, s *goquery.Selection) {
		if t := s.Text(); strings.Contains(t, statisticsMarker) {
			scripts = append(scripts, t)
		}
	})
	return scripts
}

// recoverStatistic pulls the count for label out of script text.
//
// It takes the span between the upper-case and the next lower-case label
// token, then the text after "label" within that span, drops thousands
// separators and parses whatever follows the final quote.
func recoverStatistic(label, script string) (int64, error) {
	spanRE, err := regexp.Compile(regexp.QuoteMeta(strings.ToUpper(label)) + `(.*?)` + regexp.QuoteMeta(strings.ToLower(label)))
	if err != nil {
		return 0, fmt.Errorf("compiling %s pattern: %w", label, err)
	}

	span := spanRE.FindStringSubmatch(script)
	if span == nil {
		return 0, fmt.Errorf("%s: %w", label, errStatisticSpan)
	}

	match := labelRE.FindStringSubmatch(span[1])
	if match == nil {
		return 0, fmt.Errorf("%s: %w", label, errStatisticLabel)
	}

	digits := strings.ReplaceAll(match[1], ",", "")
	if i := strings.LastIndex(digits, `"`); i >= 0 {
		digits = digits[i+1:]
	}
	digits = strings.TrimSpace(digits)

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: parsing count %q: %w", label, digits, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: negative count %d", label, n)
	}
	return n, nil
}
