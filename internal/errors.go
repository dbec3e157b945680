package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyVideoID is returned when an operation is called without a video ID
	ErrEmptyVideoID = errors.New("video ID is empty")
	// ErrInvalidVideoURL is returned for URLs that do not name a YouTube video
	ErrInvalidVideoURL = errors.New("not a YouTube video URL")
	// ErrNotFound is returned by the store when no row matches
	ErrNotFound = errors.New("not found")
	// ErrNoCaptions is returned when a video has no caption track to download
	ErrNoCaptions = errors.New("no captions available")
)

// MissingContentError reports a watch page without the expected content container
type MissingContentError struct {
	ID string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("video with the ID %s does not exist", e.ID)
}

// FetchError wraps any failure to retrieve a watch page
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching video %s: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports markup that has the content container but cannot be
// turned into a record, e.g. an unparseable view count.
type ExtractionError struct {
	ID    string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("extracting video %s: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("extracting video %s: field %s: %v", e.ID, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
