package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/api/metrics"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// DashboardHandler runs the ownership guard in front of every dashboard
// request.
type DashboardHandler struct {
	guard  ports.GuardService
	ledger ports.LedgerService
	log    zerolog.Logger
}

func NewDashboardHandler(guard ports.GuardService, ledger ports.LedgerService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{guard: guard, ledger: ledger, log: log}
}

// Show returns the owner's current entries. Visiting an unclaimed username
// claims it for an account without a profile.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  dashboardResponse
// @Success      303
// @Success      308
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /dashboard/{username} [get]
func (h *DashboardHandler) Show(c echo.Context) error {
	decision, done, err := h.ensureAccess(c)
	if err != nil || done {
		return err
	}

	ctx := c.Request().Context()
	username := decision.Profile.Username
	thoughts, err := h.ledger.CurrentAndHistory(ctx, username, domain.StreamThought)
	if err != nil {
		return err
	}
	people, err := h.ledger.CurrentAndHistory(ctx, username, domain.StreamPeople)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		Profile:  toProfileResponse(decision.Profile),
		Created:  decision.Outcome == ports.AccessCreated,
		Thoughts: toStreamResponse(thoughts),
		People:   toStreamResponse(people),
	})
}

// Post appends an entry to one of the owner's streams.
//
// @Summary      Publish an entry
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string         true  "Username"
// @Param        stream    path      string         true  "thought or people"
// @Param        body      body      appendRequest  true  "Entry content"
// @Success      201       {object}  entryResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /dashboard/{username}/{stream} [post]
func (h *DashboardHandler) Post(c echo.Context) error {
	decision, done, err := h.ensureAccess(c)
	if err != nil || done {
		return err
	}

	stream, err := domain.ParseStream(c.Param("stream"))
	if err != nil {
		return err
	}
	var req appendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	entry, err := h.ledger.Append(c.Request().Context(), decision.Profile.Username, stream, req.Content)
	if err != nil {
		return err
	}
	metrics.EntriesAppendedTotal.WithLabelValues(string(stream)).Inc()
	return c.JSON(http.StatusCreated, toEntryResponse(entry))
}

// ensureAccess runs the guard and writes the redirect response when the
// caller is not the owner. done reports that a response was written.
func (h *DashboardHandler) ensureAccess(c echo.Context) (decision ports.AccessDecision, done bool, err error) {
	decision, err = h.guard.EnsureAccess(c.Request().Context(), c.Param("username"), principalFrom(c))
	if err != nil {
		return decision, true, err
	}
	metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Outcome), decision.Reason).Inc()

	switch decision.Outcome {
	case ports.AccessCreated:
		metrics.ProfilesRegisteredTotal.WithLabelValues("dashboard").Inc()
		return decision, false, nil
	case ports.AccessOwner:
		return decision, false, nil
	}

	switch decision.Reason {
	case ports.ReasonCanonical:
		return decision, true, c.Redirect(http.StatusPermanentRedirect, dashboardPath(decision.Username)+streamSuffix(c))
	case ports.ReasonAlreadyRegistered:
		return decision, true, c.Redirect(http.StatusSeeOther, dashboardPath(decision.Username))
	default:
		return decision, true, c.JSON(http.StatusForbidden, errorResponse{
			Error:    "this dashboard belongs to someone else",
			Redirect: "/",
		})
	}
}

func streamSuffix(c echo.Context) string {
	if s := c.Param("stream"); s != "" {
		return "/" + s
	}
	return ""
}
