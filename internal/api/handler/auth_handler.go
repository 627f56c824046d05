package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/api/metrics"
	"github.com/kokoro-wiki/kokoro/internal/api/middleware"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

type AuthHandler struct {
	auth          ports.AuthService
	registry      ports.RegistryService
	secureCookies bool
	log           zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, registry ports.RegistryService, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, registry: registry, secureCookies: secureCookies, log: log}
}

// SignUp creates a new account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Email and password"
// @Success      201   {object}  principalResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "invalid").Inc()
		return err
	}

	principal, err := h.auth.SignUp(c.Request().Context(), req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("signup", failureReason(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPrincipalResponse(principal))
}

// SignIn exchanges credentials for a session token. The token is returned in
// the body and set as the session cookie.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Email and password"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, principal, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		// unknown email and wrong password look the same from outside
		err = domain.ErrInvalidCredentials
	}
	metrics.AuthAttemptsTotal.WithLabelValues("signin", failureReason(err)).Inc()
	if err != nil {
		return err
	}

	c.SetCookie(middleware.SessionCookieFor(session.Token, session.ExpiresAt, h.secureCookies))
	return c.JSON(http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Principal: toPrincipalResponse(principal),
	})
}

// SignOut revokes the current session token and clears the cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  errorResponse
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	tokenID, expiresAt := sessionFrom(c)
	err := h.auth.SignOut(c.Request().Context(), tokenID, expiresAt)
	metrics.AuthAttemptsTotal.WithLabelValues("signout", failureReason(err)).Inc()
	if err != nil {
		return err
	}
	c.SetCookie(middleware.SessionCookieFor("", expiresAt, h.secureCookies))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in principal and its profile, if any.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  meResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	resp := meResponse{Principal: toPrincipalResponse(principal)}
	profile, err := h.registry.ProfileOf(c.Request().Context(), principal)
	switch {
	case err == nil:
		p := toProfileResponse(profile)
		resp.Profile = &p
	case !errors.Is(err, domain.ErrProfileNotFound):
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// failureReason turns an operation error into a short metric label.
func failureReason(err error) string {
	var already *domain.AlreadyRegisteredError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &already):
		return "already_registered"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrSameUsername):
		return "invalid"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrPrincipalExists):
		return "exists"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "taken"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
