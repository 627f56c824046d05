package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedUsernames collide with top-level routes.
var reservedUsernames = map[string]struct{}{
	"api": {}, "auth": {}, "dashboard": {}, "edit-username": {}, "health": {},
	"metrics": {}, "setup": {}, "swagger": {}, "static": {},
}

// Profile binds a principal to its unique public username.
//
// Username is the canonical (lowercase) lookup key used in URLs and unique
// indexes; DisplayUsername keeps the casing the owner typed.
type Profile struct {
	ID              string    `json:"id"`
	PrincipalID     string    `json:"principal_id"`
	PrincipalEmail  string    `json:"-"`
	Username        string    `json:"username"`
	DisplayUsername string    `json:"display_username"`
	DisplayName     string    `json:"display_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OwnedBy reports whether the profile belongs to the given principal.
func (p *Profile) OwnedBy(principal *Principal) bool {
	return p != nil && principal != nil && p.PrincipalID == principal.ID
}

// CanonicalUsername returns the lookup form of a username.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks the 3-20 character [A-Za-z0-9_-] rule.
func ValidateUsername(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return &ValidationError{Field: "username", Message: "username is required"}
	case len(username) < UsernameMinLength:
		return &ValidationError{Field: "username", Message: "username must be at least 3 characters long"}
	case len(username) > UsernameMaxLength:
		return &ValidationError{Field: "username", Message: "username cannot be longer than 20 characters"}
	case !usernamePattern.MatchString(username):
		return &ValidationError{Field: "username", Message: "username can only contain letters, numbers, underscores, and hyphens"}
	}
	if _, ok := reservedUsernames[CanonicalUsername(username)]; ok {
		return &ValidationError{Field: "username", Message: "username is reserved"}
	}
	return nil
}

// Availability is the result of probing a candidate username.
type Availability string

const (
	AvailabilityInvalid   Availability = "invalid"
	AvailabilityAvailable Availability = "available"
	AvailabilityTaken     Availability = "taken"
)
