package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kokoro-wiki/kokoro/internal/api/middleware"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// principalFrom returns the principal injected by the Auth middleware, or nil
// for anonymous requests.
func principalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(middleware.KeyPrincipal).(*domain.Principal)
	return p
}

// requirePrincipal fails fast with domain.ErrUnauthenticated before any
// service call.
func requirePrincipal(c echo.Context) (*domain.Principal, error) {
	p := principalFrom(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

// sessionFrom returns the id and expiry of the token that authenticated the request.
func sessionFrom(c echo.Context) (tokenID string, expiresAt time.Time) {
	tokenID, _ = c.Get(middleware.KeyTokenID).(string)
	expiresAt, _ = c.Get(middleware.KeyTokenExpAt).(time.Time)
	return tokenID, expiresAt
}

// bindAndValidate binds the request body and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(400, "invalid payload")
	}
	return c.Validate(req)
}
