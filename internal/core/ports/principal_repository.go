package ports

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// PrincipalRepository persists identities issued by the identity store.
type PrincipalRepository interface {
	// Create stores a new principal. Returns domain.ErrPrincipalExists when
	// the email is already registered.
	Create(ctx context.Context, principal *domain.Principal) (*domain.Principal, error)
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
}
