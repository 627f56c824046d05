package apiclient

import (
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

type Links struct {
	Public    string `json:"public"`
	Dashboard string `json:"dashboard"`
}

type Profile struct {
	Username        string    `json:"username"`
	DisplayUsername string    `json:"display_username"`
	DisplayName     string    `json:"display_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Links           Links     `json:"_links"`
}

type Me struct {
	Principal Principal `json:"principal"`
	Profile   *Profile  `json:"profile,omitempty"`
}

type ProfileMutation struct {
	Profile  Profile `json:"profile"`
	Redirect string  `json:"redirect"`
}

type Entry struct {
	ID        string    `json:"id"`
	Stream    string    `json:"stream"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Stream struct {
	Current *Entry  `json:"current"`
	History []Entry `json:"history"`
}

type Dashboard struct {
	Profile  Profile `json:"profile"`
	Created  bool    `json:"created"`
	Thoughts Stream  `json:"thoughts"`
	People   Stream  `json:"people"`
}

type DayGroup struct {
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

type PublicProfile struct {
	Profile     Profile    `json:"profile"`
	Timezone    string     `json:"timezone"`
	Thoughts    Stream     `json:"thoughts"`
	People      Stream     `json:"people"`
	ThoughtDays []DayGroup `json:"thought_days"`
	PeopleDays  []DayGroup `json:"people_days"`
	GeneratedAt time.Time  `json:"generated_at"`
}

type availability struct {
	Username string              `json:"username"`
	Status   domain.Availability `json:"status"`
}
