package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// GuardService runs on every dashboard access and decides whether the
// signed-in principal owns, may claim, or must be sent away from a username.
type GuardService struct {
	registry ports.RegistryService
	log      zerolog.Logger
}

func NewGuardService(registry ports.RegistryService, log zerolog.Logger) *GuardService {
	return &GuardService{registry: registry, log: log}
}

// EnsureAccess never fails for ownership mismatches; those come back as
// AccessRedirect decisions. Errors are limited to ErrUnauthenticated,
// validation failures and backend failures.
func (s *GuardService) EnsureAccess(ctx context.Context, requestedUsername string, principal *domain.Principal) (ports.AccessDecision, error) {
	requested := strings.TrimSpace(requestedUsername)
	canonical := domain.CanonicalUsername(requested)
	if canonical != requested {
		return ports.AccessDecision{Outcome: ports.AccessRedirect, Username: canonical, Reason: ports.ReasonCanonical}, nil
	}

	if principal == nil {
		return ports.AccessDecision{}, domain.ErrUnauthenticated
	}

	profile, err := s.registry.ResolveOwner(ctx, canonical)
	switch {
	case err == nil && profile.OwnedBy(principal):
		return ports.AccessDecision{Outcome: ports.AccessOwner, Profile: profile, Username: profile.Username}, nil
	case err == nil:
		s.log.Warn().Str("username", canonical).Str("principal_id", principal.ID).Msg("dashboard access by non-owner")
		return ports.AccessDecision{Outcome: ports.AccessRedirect, Reason: ports.ReasonNotOwner}, nil
	case !errors.Is(err, domain.ErrProfileNotFound):
		return ports.AccessDecision{}, fmt.Errorf("ensure access: %w", err)
	}

	created, err := s.registry.RegisterIfAbsent(ctx, principal, canonical, "")
	var already *domain.AlreadyRegisteredError
	switch {
	case err == nil:
		return ports.AccessDecision{Outcome: ports.AccessCreated, Profile: created, Username: created.Username}, nil
	case errors.As(err, &already):
		return ports.AccessDecision{Outcome: ports.AccessRedirect, Username: already.Username, Reason: ports.ReasonAlreadyRegistered}, nil
	case errors.Is(err, domain.ErrUsernameTaken):
		return ports.AccessDecision{Outcome: ports.AccessRedirect, Reason: ports.ReasonNotOwner}, nil
	default:
		return ports.AccessDecision{}, err
	}
}
