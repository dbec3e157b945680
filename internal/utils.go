package internal

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var youtubeHosts = []string{"www.youtube.com", "youtube.com", "m.youtube.com", "youtu.be"}

// ParseArg turns a video ID or any YouTube URL form into (watch URL, video ID).
// URLs that are not YouTube watch links are rejected with ErrInvalidVideoURL.
func ParseArg(arg string) (string, string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", "", ErrEmptyVideoID
	}
	if !strings.HasPrefix(arg, "https://") && !strings.HasPrefix(arg, "http://") {
		return WatchURL(arg), arg, nil
	}

	id, err := videoIDFromURL(arg)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidVideoURL, err)
	}
	return WatchURL(id), id, nil
}

func videoIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	if !slices.Contains(youtubeHosts, u.Host) {
		return "", fmt.Errorf("not a YouTube URL: %s", raw)
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}

	// youtu.be/<id>, /shorts/<id>, /embed/<id>, /live/<id>
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if id := segments[len(segments)-1]; id != "" && id != "watch" {
		return id, nil
	}
	return "", fmt.Errorf("no video ID in URL: %s", raw)
}

func IsValidYouTubeID(id string) bool {
	return videoIDRE.MatchString(id)
}

// IsLikelyCommand reports whether a bare argument is more likely a mistyped
// subcommand than a video ID.
func IsLikelyCommand(arg string) bool {
	return len(arg) <= 10 && !IsValidYouTubeID(arg)
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func wrapWidth() int {
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil:
		return 80
	case cols > 10:
		return cols - 4
	default:
		return cols
	}
}

// RenderMarkdown styles markdown for the current terminal.
func RenderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth()),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	out, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// EnsureDirs creates each non-empty dir, parents included.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
