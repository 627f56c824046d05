package handler

import (
	"net/url"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

func publicPath(username string) string {
	return "/" + url.PathEscape(username)
}

func dashboardPath(username string) string {
	return "/dashboard/" + url.PathEscape(username)
}

func toPrincipalResponse(p *domain.Principal) principalResponse {
	return principalResponse{ID: p.ID, Email: p.Email}
}

func toProfileResponse(p *domain.Profile) profileResponse {
	display := p.DisplayUsername
	if display == "" {
		display = p.Username
	}
	return profileResponse{
		Username:        p.Username,
		DisplayUsername: display,
		DisplayName:     p.DisplayName,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Links: profileLinks{
			Public:    publicPath(p.Username),
			Dashboard: dashboardPath(p.Username),
		},
	}
}

func toEntryResponse(e *domain.Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Stream:    string(e.Stream),
		Content:   e.Content,
		Title:     e.Title(),
		CreatedAt: e.CreatedAt,
	}
}

func toEntryResponses(entries []*domain.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toStreamResponse(v ports.StreamView) streamResponse {
	resp := streamResponse{History: toEntryResponses(v.History)}
	if v.Current != nil {
		cur := toEntryResponse(v.Current)
		resp.Current = &cur
	}
	return resp
}

func toDayGroupResponses(groups []ports.DayGroup) []dayGroupResponse {
	out := make([]dayGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dayGroupResponse{
			Date:    g.Day.Format("2006-01-02"),
			Label:   g.Label,
			Entries: toEntryResponses(g.Entries),
		})
	}
	return out
}

func toPublicProfileResponse(tl *ports.Timeline) publicProfileResponse {
	return publicProfileResponse{
		Profile:     toProfileResponse(tl.Profile),
		Timezone:    tl.Location,
		Thoughts:    toStreamResponse(tl.Thoughts),
		People:      toStreamResponse(tl.People),
		ThoughtDays: toDayGroupResponses(tl.ThoughtDays),
		PeopleDays:  toDayGroupResponses(tl.PeopleDays),
		GeneratedAt: tl.GeneratedAt,
	}
}
