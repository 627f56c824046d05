package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

func TestProfileHandler_Availability(t *testing.T) {
	reg := &stubRegistry{
		availabilityFn: func(ctx context.Context, username string) (domain.Availability, error) {
			if username != "Alice" {
				t.Fatalf("expected raw path param, got %q", username)
			}
			return domain.AvailabilityTaken, nil
		},
	}
	h := NewProfileHandler(reg, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/api/v1/usernames/Alice/availability", "", nil)
	c.SetParamNames("username")
	c.SetParamValues("Alice")

	if err := h.Availability(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp availabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Username != "alice" || resp.Status != domain.AvailabilityTaken {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_Setup_Created(t *testing.T) {
	reg := &stubRegistry{
		registerFn: func(ctx context.Context, p *domain.Principal, username, displayName string) (*domain.Profile, error) {
			if p.ID != testPrincipal.ID || username != "Alice" || displayName != "Alice A." {
				t.Fatalf("unexpected args: %v %q %q", p, username, displayName)
			}
			return &domain.Profile{ID: "prof-1", PrincipalID: p.ID, Username: "alice", DisplayUsername: "Alice", DisplayName: displayName}, nil
		},
	}
	h := NewProfileHandler(reg, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/setup", `{"username":"Alice","display_name":"Alice A."}`, testPrincipal)
	if err := h.Setup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp profileMutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/dashboard/alice" || resp.Profile.DisplayUsername != "Alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_Setup_AlreadyRegisteredRedirects(t *testing.T) {
	reg := &stubRegistry{
		registerFn: func(ctx context.Context, p *domain.Principal, username, displayName string) (*domain.Profile, error) {
			return nil, &domain.AlreadyRegisteredError{Username: "alice"}
		},
	}
	h := NewProfileHandler(reg, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/setup", `{"username":"other"}`, testPrincipal)
	if err := h.Setup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/alice" {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestProfileHandler_Setup_InvalidUsername(t *testing.T) {
	reg := &stubRegistry{
		registerFn: func(ctx context.Context, p *domain.Principal, username, displayName string) (*domain.Profile, error) {
			t.Fatal("registry must not be called for invalid input")
			return nil, nil
		},
	}
	h := NewProfileHandler(reg, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/setup", `{"username":"no spaces allowed"}`, testPrincipal)
	err := h.Setup(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "username" {
		t.Fatalf("expected username validation error, got %v", err)
	}
}

func TestProfileHandler_Setup_Anonymous(t *testing.T) {
	h := NewProfileHandler(&stubRegistry{}, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/setup", `{"username":"alice"}`, nil)
	if err := h.Setup(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestProfileHandler_Rename(t *testing.T) {
	reg := &stubRegistry{
		renameFn: func(ctx context.Context, p *domain.Principal, oldUsername, newUsername string) (*domain.Profile, error) {
			if oldUsername != "alice" || newUsername != "bob" {
				t.Fatalf("unexpected args: %q %q", oldUsername, newUsername)
			}
			return &domain.Profile{ID: "prof-1", PrincipalID: p.ID, Username: "bob", DisplayUsername: "bob"}, nil
		},
	}
	h := NewProfileHandler(reg, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/edit-username/alice", `{"new_username":"bob"}`, testPrincipal)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.Rename(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp profileMutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/dashboard/bob" || resp.Profile.Links.Public != "/bob" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_Rename_Taken(t *testing.T) {
	reg := &stubRegistry{
		renameFn: func(ctx context.Context, p *domain.Principal, oldUsername, newUsername string) (*domain.Profile, error) {
			return nil, domain.ErrUsernameTaken
		},
	}
	h := NewProfileHandler(reg, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/edit-username/alice", `{"new_username":"bob"}`, testPrincipal)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.Rename(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}
