package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

type stubGuard struct {
	ensureFn func(ctx context.Context, username string, p *domain.Principal) (ports.AccessDecision, error)
}

func (s *stubGuard) EnsureAccess(ctx context.Context, username string, p *domain.Principal) (ports.AccessDecision, error) {
	return s.ensureFn(ctx, username, p)
}

type stubLedger struct {
	appendFn  func(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error)
	currentFn func(ctx context.Context, username string, stream domain.Stream) (ports.StreamView, error)
}

func (s *stubLedger) Append(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error) {
	return s.appendFn(ctx, username, stream, content)
}

func (s *stubLedger) CurrentAndHistory(ctx context.Context, username string, stream domain.Stream) (ports.StreamView, error) {
	return s.currentFn(ctx, username, stream)
}

var aliceProfile = &domain.Profile{ID: "prof-alice", PrincipalID: testPrincipal.ID, Username: "alice", DisplayUsername: "Alice"}

func decide(d ports.AccessDecision, err error) *stubGuard {
	return &stubGuard{ensureFn: func(ctx context.Context, username string, p *domain.Principal) (ports.AccessDecision, error) {
		return d, err
	}}
}

func emptyLedger() *stubLedger {
	return &stubLedger{
		currentFn: func(ctx context.Context, username string, stream domain.Stream) (ports.StreamView, error) {
			return ports.StreamView{Stream: stream}, nil
		},
	}
}

func TestDashboardHandler_Show_Owner(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger := &stubLedger{
		currentFn: func(ctx context.Context, username string, stream domain.Stream) (ports.StreamView, error) {
			if username != "alice" {
				t.Fatalf("unexpected username %q", username)
			}
			if stream == domain.StreamPeople {
				return ports.StreamView{Stream: stream}, nil
			}
			return ports.StreamView{
				Stream:  stream,
				Current: &domain.Entry{ID: "2", Stream: stream, Content: "# Today\nfine", CreatedAt: at},
				History: []*domain.Entry{{ID: "1", Stream: stream, Content: "older", CreatedAt: at.Add(-time.Hour)}},
			}, nil
		},
	}
	h := NewDashboardHandler(decide(ports.AccessDecision{Outcome: ports.AccessOwner, Profile: aliceProfile, Username: "alice"}, nil), ledger, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/dashboard/alice", "", testPrincipal)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Created {
		t.Fatal("owner visit must not report created")
	}
	if resp.Thoughts.Current == nil || resp.Thoughts.Current.Title != "Today" {
		t.Fatalf("unexpected current thought: %+v", resp.Thoughts.Current)
	}
	if len(resp.Thoughts.History) != 1 || resp.People.Current != nil {
		t.Fatalf("unexpected streams: %+v", resp)
	}
}

func TestDashboardHandler_Show_Created(t *testing.T) {
	h := NewDashboardHandler(decide(ports.AccessDecision{Outcome: ports.AccessCreated, Profile: aliceProfile, Username: "alice"}, nil), emptyLedger(), zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/dashboard/alice", "", testPrincipal)
	if err := h.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Created {
		t.Fatal("expected created flag")
	}
}

func TestDashboardHandler_Redirects(t *testing.T) {
	cases := []struct {
		name     string
		decision ports.AccessDecision
		stream   string
		wantCode int
		wantLoc  string
	}{
		{
			name:     "canonical",
			decision: ports.AccessDecision{Outcome: ports.AccessRedirect, Username: "alice", Reason: ports.ReasonCanonical},
			wantCode: http.StatusPermanentRedirect,
			wantLoc:  "/dashboard/alice",
		},
		{
			name:     "canonical keeps stream",
			decision: ports.AccessDecision{Outcome: ports.AccessRedirect, Username: "alice", Reason: ports.ReasonCanonical},
			stream:   "thought",
			wantCode: http.StatusPermanentRedirect,
			wantLoc:  "/dashboard/alice/thought",
		},
		{
			name:     "already registered",
			decision: ports.AccessDecision{Outcome: ports.AccessRedirect, Username: "alice", Reason: ports.ReasonAlreadyRegistered},
			wantCode: http.StatusSeeOther,
			wantLoc:  "/dashboard/alice",
		},
		{
			name:     "not owner",
			decision: ports.AccessDecision{Outcome: ports.AccessRedirect, Reason: ports.ReasonNotOwner},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := &stubLedger{
				currentFn: func(ctx context.Context, username string, stream domain.Stream) (ports.StreamView, error) {
					t.Fatal("ledger must not be read on redirect")
					return ports.StreamView{}, nil
				},
			}
			h := NewDashboardHandler(decide(tc.decision, nil), ledger, zerolog.Nop())

			c, rec := newTestContext(http.MethodGet, "/dashboard/Alice", "", testPrincipal)
			if tc.stream != "" {
				c.SetParamNames("username", "stream")
				c.SetParamValues("Alice", tc.stream)
			}
			if err := h.Show(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if tc.wantLoc != "" && rec.Header().Get("Location") != tc.wantLoc {
				t.Fatalf("expected Location %q, got %q", tc.wantLoc, rec.Header().Get("Location"))
			}
			if tc.wantCode == http.StatusForbidden {
				var resp errorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if resp.Redirect != "/" || resp.Error == "" {
					t.Fatalf("unexpected body: %+v", resp)
				}
			}
		})
	}
}

func TestDashboardHandler_Show_Unauthenticated(t *testing.T) {
	h := NewDashboardHandler(decide(ports.AccessDecision{}, domain.ErrUnauthenticated), emptyLedger(), zerolog.Nop())

	c, _ := newTestContext(http.MethodGet, "/dashboard/alice", "", nil)
	if err := h.Show(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestDashboardHandler_Post(t *testing.T) {
	var gotStream domain.Stream
	ledger := &stubLedger{
		appendFn: func(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error) {
			gotStream = stream
			if username != "alice" || content != "hello world" {
				t.Fatalf("unexpected args: %q %q", username, content)
			}
			return &domain.Entry{ID: "e-1", Stream: stream, Content: content, CreatedAt: time.Now()}, nil
		},
	}
	h := NewDashboardHandler(decide(ports.AccessDecision{Outcome: ports.AccessOwner, Profile: aliceProfile, Username: "alice"}, nil), ledger, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/dashboard/alice/people", `{"content":"hello world"}`, testPrincipal)
	c.SetParamNames("username", "stream")
	c.SetParamValues("alice", "people")

	if err := h.Post(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotStream != domain.StreamPeople {
		t.Fatalf("expected people stream, got %q", gotStream)
	}
}

func TestDashboardHandler_Post_UnknownStream(t *testing.T) {
	ledger := &stubLedger{
		appendFn: func(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error) {
			t.Fatal("append must not run for an unknown stream")
			return nil, nil
		},
	}
	h := NewDashboardHandler(decide(ports.AccessDecision{Outcome: ports.AccessOwner, Profile: aliceProfile, Username: "alice"}, nil), ledger, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/dashboard/alice/diary", `{"content":"x"}`, testPrincipal)
	c.SetParamNames("username", "stream")
	c.SetParamValues("alice", "diary")

	if err := h.Post(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDashboardHandler_Post_BlankContent(t *testing.T) {
	ledger := &stubLedger{
		appendFn: func(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error) {
			return nil, domain.ErrEmptyContent
		},
	}
	h := NewDashboardHandler(decide(ports.AccessDecision{Outcome: ports.AccessOwner, Profile: aliceProfile, Username: "alice"}, nil), ledger, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/dashboard/alice/thought", `{"content":"   "}`, testPrincipal)
	c.SetParamNames("username", "stream")
	c.SetParamValues("alice", "thought")

	if err := h.Post(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
