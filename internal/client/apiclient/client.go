// Package apiclient talks to the kokoro HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status   int
	Message  string
	Code     string
	Redirect string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Is maps status codes onto the domain sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUnauthenticated, domain.ErrInvalidCredentials:
		return e.Status == http.StatusUnauthorized
	case domain.ErrForbidden:
		return e.Status == http.StatusForbidden
	case domain.ErrProfileNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrValidation:
		return e.Status == http.StatusUnprocessableEntity
	case domain.ErrBackendUnavailable:
		return e.Status == http.StatusServiceUnavailable
	case domain.ErrUsernameTaken:
		return e.Status == http.StatusConflict && e.Code == "username_taken"
	case domain.ErrPrincipalExists:
		return e.Status == http.StatusConflict && e.Code == "account_exists"
	case domain.ErrPrincipalRegistered:
		return e.Status == http.StatusConflict && e.Code == "already_registered"
	}
	return false
}

// RedirectError reports a 3xx answer. The client does not follow redirects so
// callers can tell a canonical rename from an already-registered account.
type RedirectError struct {
	Status   int
	Location string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirected (%d) to %s", e.Status, e.Location)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	// copy so the caller's client keeps its own redirect policy
	hc := *c.http
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	c.http = &hc
	return c
}

// SetToken replaces the bearer token used on later calls.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) SignUp(ctx context.Context, email, password string) (*Principal, error) {
	var out Principal
	if err := c.do(ctx, http.MethodPost, "/auth/signup", map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn stores the returned token on the client.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/auth/signin", map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*Me, error) {
	var out Me
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Availability(ctx context.Context, username string) (domain.Availability, error) {
	var out availability
	if err := c.do(ctx, http.MethodGet, "/api/v1/usernames/"+url.PathEscape(username)+"/availability", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) Setup(ctx context.Context, username, displayName string) (*ProfileMutation, error) {
	var out ProfileMutation
	if err := c.do(ctx, http.MethodPost, "/setup", map[string]string{"username": username, "display_name": displayName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Rename(ctx context.Context, oldUsername, newUsername string) (*ProfileMutation, error) {
	var out ProfileMutation
	if err := c.do(ctx, http.MethodPost, "/edit-username/"+url.PathEscape(oldUsername), map[string]string{"new_username": newUsername}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dashboard(ctx context.Context, username string) (*Dashboard, error) {
	var out Dashboard
	if err := c.do(ctx, http.MethodGet, "/dashboard/"+url.PathEscape(username), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Post(ctx context.Context, username string, stream domain.Stream, content string) (*Entry, error) {
	var out Entry
	path := "/dashboard/" + url.PathEscape(username) + "/" + url.PathEscape(string(stream))
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the public view. tz may be empty for UTC.
func (c *Client) Profile(ctx context.Context, username, tz string) (*PublicProfile, error) {
	path := "/api/v1/profiles/" + url.PathEscape(username)
	if tz != "" {
		path += "?" + url.Values{"tz": {tz}}.Encode()
	}
	var out PublicProfile
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return &RedirectError{Status: resp.StatusCode, Location: resp.Header.Get("Location")}
	case resp.StatusCode >= 400:
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error    string `json:"error"`
			Code     string `json:"code"`
			Redirect string `json:"redirect"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Message, apiErr.Code, apiErr.Redirect = envelope.Error, envelope.Code, envelope.Redirect
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
