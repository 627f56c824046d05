package domain

import (
	"strings"
	"time"
)

// Stream is one of the two independent content categories of a profile.
type Stream string

const (
	StreamThought Stream = "thought"
	StreamPeople  Stream = "people"
)

// Streams lists every stream in display order.
var Streams = []Stream{StreamThought, StreamPeople}

// ParseStream validates a stream name coming from a URL or request body.
func ParseStream(s string) (Stream, error) {
	switch Stream(strings.ToLower(strings.TrimSpace(s))) {
	case StreamThought:
		return StreamThought, nil
	case StreamPeople:
		return StreamPeople, nil
	}
	return "", ErrInvalidStream
}

// Entry is one append-only, timestamped text entry in a stream.
type Entry struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"-"`
	Username  string    `json:"username"`
	Stream    Stream    `json:"stream"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const headingPrefix = "# "

// Title returns the heading text when the entry starts with "# ", or "".
func (e *Entry) Title() string {
	return HeadingTitle(e.Content)
}

// HeadingTitle extracts the heading from the first line of text when it
// carries the "# " prefix.
func HeadingTitle(text string) string {
	first, _, _ := strings.Cut(strings.TrimLeft(text, "\n"), "\n")
	if !strings.HasPrefix(first, headingPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(first, headingPrefix))
}

// NormalizeContent trims surrounding whitespace and rejects blank content.
func NormalizeContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	return trimmed, nil
}
