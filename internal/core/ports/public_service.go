package ports

import (
	"context"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// ProfileView is everything the public page shows for a username.
type ProfileView struct {
	Profile  *domain.Profile `json:"profile"`
	Thoughts StreamView      `json:"thoughts"`
	People   StreamView      `json:"people"`
}

// Timeline is a ProfileView with day grouping applied for one viewer location.
type Timeline struct {
	*ProfileView
	Location    string     `json:"timezone"`
	ThoughtDays []DayGroup `json:"thought_days"`
	PeopleDays  []DayGroup `json:"people_days"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// PublicService is the read-only renderer behind GET /{username}.
type PublicService interface {
	ProfileView(ctx context.Context, username string) (*ProfileView, error)
	Timeline(ctx context.Context, username string, loc *time.Location) (*Timeline, error)
}
