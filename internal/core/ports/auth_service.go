package ports

import (
	"context"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// Session is a signed token handed to a client after sign-in.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// AuthService is the identity store: credentials in, principal + session out.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*domain.Principal, error)
	SignIn(ctx context.Context, email, password string) (*Session, *domain.Principal, error)
	SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error
}
