package ports

import (
	"context"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// StreamView is the current entry of a stream plus its history, newest first.
type StreamView struct {
	Stream  domain.Stream   `json:"stream"`
	Current *domain.Entry   `json:"current"`
	History []*domain.Entry `json:"history"`
}

// Empty reports whether the stream has no entries at all.
func (v StreamView) Empty() bool {
	return v.Current == nil
}

// All returns current followed by history.
func (v StreamView) All() []*domain.Entry {
	if v.Current == nil {
		return nil
	}
	return append([]*domain.Entry{v.Current}, v.History...)
}

// DayGroup holds the entries created on one calendar day of the viewer.
type DayGroup struct {
	Day     time.Time       `json:"day"`
	Label   string          `json:"label"`
	Entries []*domain.Entry `json:"entries"`
}

// LedgerService is the append-only content store per username and stream.
type LedgerService interface {
	Append(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error)
	CurrentAndHistory(ctx context.Context, username string, stream domain.Stream) (StreamView, error)
}
