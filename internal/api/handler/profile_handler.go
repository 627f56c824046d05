package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/api/metrics"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// ProfileHandler serves the username registry: availability, first-time
// setup and renames.
type ProfileHandler struct {
	registry ports.RegistryService
	log      zerolog.Logger
}

func NewProfileHandler(registry ports.RegistryService, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{registry: registry, log: log}
}

// Availability reports whether a username can be claimed.
//
// @Summary      Username availability
// @Tags         profiles
// @Produce      json
// @Param        username  path      string  true  "Candidate username"
// @Success      200       {object}  availabilityResponse
// @Failure      503       {object}  errorResponse
// @Router       /api/v1/usernames/{username}/availability [get]
func (h *ProfileHandler) Availability(c echo.Context) error {
	username := c.Param("username")
	status, err := h.registry.Availability(c.Request().Context(), username)
	if err != nil {
		return err
	}
	metrics.AvailabilityChecksTotal.WithLabelValues(string(status)).Inc()
	return c.JSON(http.StatusOK, availabilityResponse{
		Username: domain.CanonicalUsername(username),
		Status:   status,
	})
}

// Setup claims a username for the signed-in account. An account that already
// owns a profile is sent to its dashboard with 303.
//
// @Summary      Claim a username
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setupRequest  true  "Username and display name"
// @Success      201   {object}  profileMutationResponse
// @Success      303
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /setup [post]
func (h *ProfileHandler) Setup(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req setupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.registry.RegisterIfAbsent(c.Request().Context(), principal, req.Username, req.DisplayName)
	var already *domain.AlreadyRegisteredError
	if errors.As(err, &already) {
		return c.Redirect(http.StatusSeeOther, dashboardPath(already.Username))
	}
	if err != nil {
		return err
	}

	metrics.ProfilesRegisteredTotal.WithLabelValues("setup").Inc()
	resp := toProfileResponse(profile)
	return c.JSON(http.StatusCreated, profileMutationResponse{Profile: resp, Redirect: resp.Links.Dashboard})
}

// Rename moves the caller's profile to a new username. Entries follow the
// profile.
//
// @Summary      Rename a profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string         true  "Current username"
// @Param        body      body      renameRequest  true  "New username"
// @Success      200       {object}  profileMutationResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /edit-username/{username} [post]
func (h *ProfileHandler) Rename(c echo.Context) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req renameRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ProfileRenamesTotal.WithLabelValues("invalid").Inc()
		return err
	}

	profile, err := h.registry.Rename(c.Request().Context(), principal, c.Param("username"), req.NewUsername)
	metrics.ProfileRenamesTotal.WithLabelValues(failureReason(err)).Inc()
	if err != nil {
		return err
	}

	resp := toProfileResponse(profile)
	return c.JSON(http.StatusOK, profileMutationResponse{Profile: resp, Redirect: resp.Links.Dashboard})
}
