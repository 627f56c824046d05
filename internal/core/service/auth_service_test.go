package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

type stubPrincipalRepo struct {
	principals map[string]*domain.Principal
}

func newStubPrincipalRepo() *stubPrincipalRepo {
	return &stubPrincipalRepo{principals: make(map[string]*domain.Principal)}
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubPrincipalRepo) Create(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	if _, exists := r.principals[p.Email]; exists {
		return nil, domain.ErrPrincipalExists
	}
	r.principals[p.Email] = clonePrincipal(p)
	return clonePrincipal(p), nil
}

func (r *stubPrincipalRepo) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	p, ok := r.principals[email]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	return clonePrincipal(p), nil
}

func (r *stubPrincipalRepo) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	for _, p := range r.principals {
		if p.ID == id {
			return clonePrincipal(p), nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

type stubSessions struct {
	revoked map[string]time.Time
}

func (s *stubSessions) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoked == nil {
		s.revoked = make(map[string]time.Time)
	}
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *stubSessions) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := s.revoked[tokenID]
	return ok, nil
}

func newAuthSvc() (*AuthService, *stubPrincipalRepo, *stubSessions) {
	repo := newStubPrincipalRepo()
	sessions := &stubSessions{}
	return NewAuthService(repo, sessions, "secret", time.Hour, zerolog.Nop()), repo, sessions
}

func TestAuthService_SignUp_Success(t *testing.T) {
	svc, repo, _ := newAuthSvc()

	p, err := svc.SignUp(context.Background(), "  Alice@Example.com ", "pass123")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected principal id to be assigned")
	}
	if p.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}
	stored := repo.principals["alice@example.com"]
	if stored == nil || stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc, _, _ := newAuthSvc()

	if _, err := svc.SignUp(context.Background(), "", "pass123"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty email, got %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "bob@example.com", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc, _, _ := newAuthSvc()

	_, _ = svc.SignUp(context.Background(), "bob@example.com", "pass123")
	if _, err := svc.SignUp(context.Background(), "BOB@example.com", "pass456"); err != domain.ErrPrincipalExists {
		t.Fatalf("expected ErrPrincipalExists, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	svc, _, _ := newAuthSvc()

	created, err := svc.SignUp(context.Background(), "carol@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	session, p, err := svc.SignIn(context.Background(), "Carol@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if session.Token == "" || session.TokenID == "" {
		t.Fatalf("expected token and token id, got %+v", session)
	}
	if p.ID != created.ID {
		t.Fatalf("unexpected principal: %+v", p)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(session.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != created.ID {
		t.Fatalf("expected sub %s, got %v", created.ID, claims["sub"])
	}
	if claims["jti"] != session.TokenID {
		t.Fatalf("expected jti %s, got %v", session.TokenID, claims["jti"])
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	svc, _, _ := newAuthSvc()

	_, _ = svc.SignUp(context.Background(), "dave@example.com", "goodpass")
	if _, _, err := svc.SignIn(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthSvc()

	if _, _, err := svc.SignIn(context.Background(), "ghost@example.com", "pass"); err != domain.ErrPrincipalNotFound {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestAuthService_SignOut_RevokesToken(t *testing.T) {
	svc, _, sessions := newAuthSvc()
	exp := time.Now().Add(time.Hour)

	if err := svc.SignOut(context.Background(), "jti-1", exp); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if got, ok := sessions.revoked["jti-1"]; !ok || !got.Equal(exp) {
		t.Fatalf("expected jti-1 revoked until %v, got %v", exp, got)
	}
	if err := svc.SignOut(context.Background(), "", exp); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated for empty token id, got %v", err)
	}
}
