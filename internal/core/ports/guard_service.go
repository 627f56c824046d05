package ports

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// AccessOutcome is the result kind of an ownership check.
type AccessOutcome string

const (
	AccessOwner    AccessOutcome = "owner"
	AccessCreated  AccessOutcome = "created"
	AccessRedirect AccessOutcome = "redirect"
)

// Redirect reasons carried by AccessDecision.Reason.
const (
	ReasonCanonical         = "canonical"
	ReasonNotOwner          = "not_owner"
	ReasonAlreadyRegistered = "already_registered"
)

// AccessDecision tells the caller what to do with a dashboard request.
//
// For AccessOwner and AccessCreated, Profile is the principal's profile.
// For AccessRedirect, Username is the target dashboard (empty when the
// caller should go to an error page) and Reason explains why.
type AccessDecision struct {
	Outcome  AccessOutcome
	Profile  *domain.Profile
	Username string
	Reason   string
}

// GuardService reconciles a requested dashboard username with the signed-in principal.
type GuardService interface {
	EnsureAccess(ctx context.Context, requestedUsername string, principal *domain.Principal) (AccessDecision, error)
}
