package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "kokoro_session"

// Context keys set by Auth.
const (
	KeyPrincipal  = "principal"
	KeyTokenID    = "token_id"
	KeyTokenExpAt = "token_exp"
)

// Auth resolves the session token once per request. A valid, unrevoked token
// puts a *domain.Principal into the context; anything else leaves the request
// anonymous so public pages keep working with a stale cookie.
func Auth(jwtSecret string, sessions ports.SessionStore, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return next(c)
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				log.Debug().Err(err).Msg("ignoring invalid session token")
				return next(c)
			}

			sub, _ := claims["sub"].(string)
			email, _ := claims["email"].(string)
			jti, _ := claims["jti"].(string)
			if sub == "" || jti == "" {
				return next(c)
			}

			if sessions != nil {
				revoked, err := sessions.IsRevoked(c.Request().Context(), jti)
				if err != nil {
					// unknown revocation state: serve the request anonymously
					log.Warn().Err(err).Msg("session store unavailable, treating request as anonymous")
					return next(c)
				}
				if revoked {
					return next(c)
				}
			}

			var expiresAt time.Time
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				expiresAt = exp.Time
			}

			c.Set(KeyPrincipal, &domain.Principal{ID: sub, Email: email})
			c.Set(KeyTokenID, jti)
			c.Set(KeyTokenExpAt, expiresAt)
			return next(c)
		}
	}
}

// RequirePrincipal rejects anonymous requests with domain.ErrUnauthenticated.
func RequirePrincipal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p, _ := c.Get(KeyPrincipal).(*domain.Principal); p == nil {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SessionCookieFor builds the cookie that carries token until expiresAt.
// An empty token produces a cookie that clears the session.
func SessionCookieFor(token string, expiresAt time.Time, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}
