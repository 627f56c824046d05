package handler

import (
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// --- Request types ---

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type setupRequest struct {
	Username    string `json:"username"     form:"username"     validate:"required,username"`
	DisplayName string `json:"display_name" form:"display_name" validate:"max=80"`
}

type renameRequest struct {
	NewUsername string `json:"new_username" form:"new_username" validate:"required,username"`
}

type appendRequest struct {
	Content string `json:"content" form:"content" validate:"required"`
}

// --- Response types ---

type principalResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Principal principalResponse `json:"principal"`
}

type profileLinks struct {
	Public    string `json:"public"`
	Dashboard string `json:"dashboard"`
}

type profileResponse struct {
	Username        string       `json:"username"`
	DisplayUsername string       `json:"display_username"`
	DisplayName     string       `json:"display_name,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Links           profileLinks `json:"_links"`
}

type meResponse struct {
	Principal principalResponse `json:"principal"`
	Profile   *profileResponse  `json:"profile,omitempty"`
}

type profileMutationResponse struct {
	Profile  profileResponse `json:"profile"`
	Redirect string          `json:"redirect"`
}

type availabilityResponse struct {
	Username string              `json:"username"`
	Status   domain.Availability `json:"status"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	Stream    string    `json:"stream"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type streamResponse struct {
	Current *entryResponse  `json:"current"`
	History []entryResponse `json:"history"`
}

type dashboardResponse struct {
	Profile  profileResponse `json:"profile"`
	Created  bool            `json:"created"`
	Thoughts streamResponse  `json:"thoughts"`
	People   streamResponse  `json:"people"`
}

type dayGroupResponse struct {
	Date    string          `json:"date"`
	Label   string          `json:"label"`
	Entries []entryResponse `json:"entries"`
}

type publicProfileResponse struct {
	Profile     profileResponse    `json:"profile"`
	Timezone    string             `json:"timezone"`
	Thoughts    streamResponse     `json:"thoughts"`
	People      streamResponse     `json:"people"`
	ThoughtDays []dayGroupResponse `json:"thought_days"`
	PeopleDays  []dayGroupResponse `json:"people_days"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}
