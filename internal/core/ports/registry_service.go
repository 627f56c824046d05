package ports

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// RegistryService maps canonical usernames to their single owning principal.
type RegistryService interface {
	ResolveOwner(ctx context.Context, username string) (*domain.Profile, error)
	RegisterIfAbsent(ctx context.Context, principal *domain.Principal, username, displayName string) (*domain.Profile, error)
	Rename(ctx context.Context, principal *domain.Principal, oldUsername, newUsername string) (*domain.Profile, error)
	Availability(ctx context.Context, username string) (domain.Availability, error)
	// ProfileOf returns the principal's own profile or domain.ErrProfileNotFound.
	ProfileOf(ctx context.Context, principal *domain.Principal) (*domain.Profile, error)
}
