package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoro-wiki/kokoro/internal/api/handler"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
	"github.com/kokoro-wiki/kokoro/internal/core/service"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db/memory"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	store := memory.NewStore()
	return newStoreRouter(t, store, store.Sessions())
}

// newStoreRouter serves store, resolving revocation through sessions.
func newStoreRouter(t *testing.T, store *memory.Store, sessions ports.SessionStore) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	registry := service.NewRegistryService(store.Profiles(), nil, log)
	ledger := service.NewLedgerService(registry, store.Entries(), nil, log)
	reg := prometheus.NewRegistry()

	return NewRouter(Dependencies{
		Auth:     service.NewAuthService(store.Principals(), store.Sessions(), "test-secret", 0, log),
		Registry: registry,
		Guard:    service.NewGuardService(registry, log),
		Ledger:   ledger,
		Public:   service.NewPublicService(registry, ledger, nil, log),
		Sessions: sessions,
		Checks: []handler.Check{
			{Name: "store", Ping: func(context.Context) error { return nil }},
		},
		JWTSecret:  "test-secret",
		BaseURL:    "http://kokoro.test",
		Log:        log,
		Registerer: reg,
		Gatherer:   reg,
	})
}

func do(e *echo.Echo, method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signUpAndIn(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	creds := `{"email":"` + email + `","password":"secret1"}`
	rec := do(e, http.MethodPost, "/auth/signup", creds, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/auth/signin", creds, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestRouter_PostingFlow(t *testing.T) {
	e := newTestRouter(t)
	carol := signUpAndIn(t, e, "carol@example.com")

	rec := do(e, http.MethodGet, "/dashboard/Carol", "", carol)
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/dashboard/carol", rec.Header().Get(echo.HeaderLocation))

	rec = do(e, http.MethodGet, "/dashboard/carol", "", carol)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"created":true`)

	rec = do(e, http.MethodPost, "/dashboard/carol/thought", `{"content":"# Hello\nfirst light"}`, carol)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/dashboard/carol/people", `{"content":"   "}`, carol)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodGet, "/Carol", "", "")
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/carol", rec.Header().Get(echo.HeaderLocation))

	rec = do(e, http.MethodGet, "/carol", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "first light")
	assert.Contains(t, rec.Body.String(), "og?title=Hello")

	rec = do(e, http.MethodGet, "/api/v1/profiles/carol?tz=Asia/Tokyo", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"timezone":"Asia/Tokyo"`)

	rec = do(e, http.MethodGet, "/carol", "", "", echo.HeaderAccept, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"carol"`)

	rec = do(e, http.MethodGet, "/api/v1/usernames/CAROL/availability", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"taken"`)
}

func TestRouter_EmptyProfileIsNotFound(t *testing.T) {
	e := newTestRouter(t)
	dave := signUpAndIn(t, e, "dave@example.com")

	rec := do(e, http.MethodPost, "/setup", `{"username":"dave"}`, dave)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/dave", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nothing has been posted yet")

	rec = do(e, http.MethodGet, "/api/v1/profiles/dave", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DashboardAccessControl(t *testing.T) {
	e := newTestRouter(t)
	alice := signUpAndIn(t, e, "alice@example.com")
	bob := signUpAndIn(t, e, "bob@example.com")

	rec := do(e, http.MethodGet, "/dashboard/alice", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/dashboard/alice", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/auth", decodeError(t, rec).Redirect)

	rec = do(e, http.MethodGet, "/dashboard/alice", "", bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/", decodeError(t, rec).Redirect)

	rec = do(e, http.MethodPost, "/dashboard/alice/thought", `{"content":"not mine"}`, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// alice already owns a profile, so claiming another one sends her home
	rec = do(e, http.MethodGet, "/dashboard/other", "", alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/alice", rec.Header().Get(echo.HeaderLocation))

	rec = do(e, http.MethodPost, "/setup", `{"username":"another"}`, alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRouter_RenameKeepsEntries(t *testing.T) {
	e := newTestRouter(t)
	alice := signUpAndIn(t, e, "alice@example.com")

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/dashboard/alice", "", alice).Code)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/dashboard/alice/thought", `{"content":"hello"}`, alice).Code)

	rec := do(e, http.MethodPost, "/edit-username/alice", `{"new_username":"bob"}`, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"redirect":"/dashboard/bob"`)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/alice", "", "").Code)
	rec = do(e, http.MethodGet, "/bob", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	rec = do(e, http.MethodPost, "/edit-username/bob", `{"new_username":"bob"}`, alice)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_SignOutRevokesToken(t *testing.T) {
	e := newTestRouter(t)
	token := signUpAndIn(t, e, "erin@example.com")

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/auth/me", "", token).Code)
	require.Equal(t, http.StatusNoContent, do(e, http.MethodPost, "/auth/signout", "", token).Code)

	rec := do(e, http.MethodGet, "/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AuthErrors(t *testing.T) {
	e := newTestRouter(t)
	signUpAndIn(t, e, "frank@example.com")

	rec := do(e, http.MethodPost, "/auth/signup", `{"email":"frank@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signin", `{"email":"frank@example.com","password":"wrong-pass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signin", `{"email":"ghost@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Operational(t *testing.T) {
	e := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/metrics", "", "").Code)

	rec := do(e, http.MethodGet, "/og?title=%23+Hi", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))

	rec = do(e, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kokoro.wiki")
}

type downSessions struct{}

func (downSessions) Revoke(context.Context, string, time.Time) error {
	return domain.Unavailable("redis", errors.New("connection refused"))
}

func (downSessions) IsRevoked(context.Context, string) (bool, error) {
	return false, domain.Unavailable("redis", errors.New("connection refused"))
}

func TestRouter_SessionStoreOutageKeepsPublicPages(t *testing.T) {
	store := memory.NewStore()
	healthy := newStoreRouter(t, store, store.Sessions())
	carol := signUpAndIn(t, healthy, "carol@example.com")
	rec := do(healthy, http.MethodGet, "/dashboard/carol", "", carol)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(healthy, http.MethodPost, "/dashboard/carol/thought", `{"content":"still here"}`, carol)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	degraded := newStoreRouter(t, store, downSessions{})

	rec = do(degraded, http.MethodGet, "/carol", "", carol)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "still here")

	rec = do(degraded, http.MethodGet, "/api/v1/profiles/carol", "", carol)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(degraded, http.MethodPost, "/dashboard/carol/thought", `{"content":"blocked"}`, carol)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/auth", decodeError(t, rec).Redirect)
}
