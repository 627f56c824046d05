package ports

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// ProfileRepository persists the username registry.
//
// Implementations must enforce both uniqueness rules with the storage
// engine (unique index / constraint / lock) so concurrent creates resolve
// to exactly one winner.
type ProfileRepository interface {
	// Create inserts a profile. Returns domain.ErrUsernameTaken when the
	// canonical username exists, domain.ErrPrincipalRegistered when the
	// principal already owns a profile.
	Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	// FindByUsername looks up by canonical username.
	FindByUsername(ctx context.Context, username string) (*domain.Profile, error)
	FindByPrincipal(ctx context.Context, principalID string) (*domain.Profile, error)
	// Rename atomically moves the profile to a new canonical username.
	// Entries reference the immutable profile ID and are untouched.
	Rename(ctx context.Context, profileID, username, displayUsername string) (*domain.Profile, error)
}
