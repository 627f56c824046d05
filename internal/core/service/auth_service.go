package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements sign-up, sign-in and sign-out.
type AuthService struct {
	repo      ports.PrincipalRepository
	sessions  ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(repo ports.PrincipalRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*domain.Principal, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "email is required"}
	}
	if len(password) < minPasswordLength {
		return nil, &domain.ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	principal := &domain.Principal{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, principal)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("principal_id", created.ID).Msg("principal signed up")
	return created, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.Session, *domain.Principal, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	principal, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.issueToken(principal)
	if err != nil {
		return nil, nil, err
	}
	return session, principal, nil
}

// SignOut revokes a session token until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return domain.ErrUnauthenticated
	}
	return s.sessions.Revoke(ctx, tokenID, expiresAt)
}

func (s *AuthService) issueToken(principal *domain.Principal) (*ports.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	tokenID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub":   principal.ID,
		"email": principal.Email,
		"jti":   tokenID,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}
	return &ports.Session{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}
