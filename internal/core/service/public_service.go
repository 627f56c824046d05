package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// PublicService assembles the read-only public profile view.
type PublicService struct {
	registry ports.RegistryService
	ledger   *LedgerService
	cache    ports.ViewCache
	log      zerolog.Logger
	now      func() time.Time
}

// NewPublicService returns a PublicService. cache may be nil.
func NewPublicService(registry ports.RegistryService, ledger *LedgerService, cache ports.ViewCache, log zerolog.Logger) *PublicService {
	if cache == nil {
		cache = noopCache{}
	}
	return &PublicService{registry: registry, ledger: ledger, cache: cache, log: log, now: time.Now}
}

// ProfileView returns both streams for username. A profile with no entries
// in either stream is reported as domain.ErrProfileNotFound.
func (s *PublicService) ProfileView(ctx context.Context, username string) (*ports.ProfileView, error) {
	key := domain.CanonicalUsername(username)

	// The generation is read before any row so that an append or rename
	// landing mid-build leaves this view under a superseded key.
	gen, err := s.cache.Generation(ctx, key)
	cacheable := err == nil
	if err != nil {
		s.log.Warn().Err(err).Str("username", key).Msg("view cache generation read failed")
	} else if view, ok, err := s.cache.Get(ctx, key, gen); err != nil {
		s.log.Warn().Err(err).Str("username", key).Msg("view cache read failed")
	} else if ok {
		return view, nil
	}

	profile, err := s.registry.ResolveOwner(ctx, key)
	if err != nil {
		return nil, err
	}
	thoughts, err := s.ledger.streamView(ctx, profile, domain.StreamThought)
	if err != nil {
		return nil, err
	}
	people, err := s.ledger.streamView(ctx, profile, domain.StreamPeople)
	if err != nil {
		return nil, err
	}
	if thoughts.Empty() && people.Empty() {
		return nil, domain.ErrProfileNotFound
	}

	view := &ports.ProfileView{Profile: profile, Thoughts: thoughts, People: people}
	if !cacheable {
		return view, nil
	}
	if err := s.cache.Set(ctx, key, gen, view); err != nil {
		s.log.Warn().Err(err).Str("username", key).Msg("view cache write failed")
	}
	return view, nil
}

// Timeline is ProfileView with history grouped by the viewer's calendar day.
func (s *PublicService) Timeline(ctx context.Context, username string, loc *time.Location) (*ports.Timeline, error) {
	if loc == nil {
		loc = time.UTC
	}
	view, err := s.ProfileView(ctx, username)
	if err != nil {
		return nil, err
	}
	return &ports.Timeline{
		ProfileView: view,
		Location:    loc.String(),
		ThoughtDays: GroupByDay(view.Thoughts.All(), loc),
		PeopleDays:  GroupByDay(view.People.All(), loc),
		GeneratedAt: s.now().UTC(),
	}, nil
}
