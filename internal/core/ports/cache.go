package ports

import (
	"context"
	"time"
)

// ViewCache stores assembled public profile views keyed by canonical username
// and generation. Invalidate moves a username to a new generation, so a view
// built from rows read before the invalidation is written under a key no
// reader asks for again.
type ViewCache interface {
	// Generation is read before the rows a view is built from.
	Generation(ctx context.Context, username string) (int64, error)
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, username string, gen int64) (*ProfileView, bool, error)
	Set(ctx context.Context, username string, gen int64, view *ProfileView) error
	Invalidate(ctx context.Context, usernames ...string) error
}

// SessionStore tracks revoked session tokens until they would have expired.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
