package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// LedgerService appends and reads the two content streams of a profile.
type LedgerService struct {
	registry ports.RegistryService
	entries  ports.EntryRepository
	cache    ports.ViewCache
	log      zerolog.Logger
	now      func() time.Time
}

// NewLedgerService returns a LedgerService. cache may be nil.
func NewLedgerService(registry ports.RegistryService, entries ports.EntryRepository, cache ports.ViewCache, log zerolog.Logger) *LedgerService {
	if cache == nil {
		cache = noopCache{}
	}
	return &LedgerService{registry: registry, entries: entries, cache: cache, log: log, now: time.Now}
}

// Append stores a new entry timestamped with server time. Prior entries are
// never modified.
func (s *LedgerService) Append(ctx context.Context, username string, stream domain.Stream, content string) (*domain.Entry, error) {
	if _, err := domain.ParseStream(string(stream)); err != nil {
		return nil, err
	}
	content, err := domain.NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	profile, err := s.registry.ResolveOwner(ctx, username)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.Append(ctx, &domain.Entry{
		ProfileID: profile.ID,
		Stream:    stream,
		Content:   content,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("append %s: %w", stream, err)
	}
	entry.Username = profile.Username

	if err := s.cache.Invalidate(ctx, profile.Username); err != nil {
		s.log.Warn().Err(err).Str("username", profile.Username).Msg("view cache invalidation failed")
	}
	s.log.Info().Str("username", profile.Username).Str("stream", string(stream)).Str("entry_id", entry.ID).Msg("entry appended")
	return entry, nil
}

// CurrentAndHistory returns the newest entry of a stream and the rest, newest first.
func (s *LedgerService) CurrentAndHistory(ctx context.Context, username string, stream domain.Stream) (ports.StreamView, error) {
	if _, err := domain.ParseStream(string(stream)); err != nil {
		return ports.StreamView{}, err
	}
	profile, err := s.registry.ResolveOwner(ctx, username)
	if err != nil {
		return ports.StreamView{}, err
	}
	return s.streamView(ctx, profile, stream)
}

func (s *LedgerService) streamView(ctx context.Context, profile *domain.Profile, stream domain.Stream) (ports.StreamView, error) {
	entries, err := s.entries.ListByProfile(ctx, profile.ID, stream)
	if err != nil {
		return ports.StreamView{}, fmt.Errorf("list %s: %w", stream, err)
	}
	for _, e := range entries {
		e.Username = profile.Username
	}
	return SplitCurrent(stream, entries), nil
}

// SplitCurrent orders entries newest first and splits off the current one.
// entries must arrive in insertion order DESC for equal timestamps; the sort
// is stable so that order breaks ties.
func SplitCurrent(stream domain.Stream, entries []*domain.Entry) ports.StreamView {
	view := ports.StreamView{Stream: stream, History: []*domain.Entry{}}
	if len(entries) == 0 {
		return view
	}
	sorted := make([]*domain.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	view.Current = sorted[0]
	view.History = sorted[1:]
	return view
}

const dayLabelLayout = "January 2, 2006"

// GroupByDay buckets entries by their creation date in loc. Groups come
// newest day first; entries keep their relative order. Entries close to
// midnight land on different days for viewers in different zones.
func GroupByDay(entries []*domain.Entry, loc *time.Location) []ports.DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	groups := []ports.DayGroup{}
	index := map[time.Time]int{}
	for _, e := range entries {
		local := e.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, ports.DayGroup{Day: day, Label: day.Format(dayLabelLayout)})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}
