package ports

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// EntryRepository is the append-only store behind the content ledger.
type EntryRepository interface {
	// Append inserts a new entry and returns it with its ID assigned.
	Append(ctx context.Context, entry *domain.Entry) (*domain.Entry, error)
	// ListByProfile returns every entry of a stream ordered by
	// created_at DESC, then insertion order DESC.
	ListByProfile(ctx context.Context, profileID string, stream domain.Stream) ([]*domain.Entry, error)
}
