// Package memory keeps principals, profiles, entries and revoked sessions in
// process memory. It backs STORE_DRIVER=memory and the service tests; every
// uniqueness rule the database backends enforce with indexes is enforced
// here under a single mutex.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

type storedEntry struct {
	seq   int64
	entry domain.Entry
}

// Store holds the shared state; Principals, Profiles, Entries and Sessions
// return the repository views over it.
type Store struct {
	mu sync.RWMutex

	principals       map[string]domain.Principal // by id
	principalByEmail map[string]string

	profiles           map[string]domain.Profile // by id
	profileByUsername  map[string]string
	profileByPrincipal map[string]string

	entries []storedEntry
	seq     int64

	revoked map[string]time.Time
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		principals:         make(map[string]domain.Principal),
		principalByEmail:   make(map[string]string),
		profiles:           make(map[string]domain.Profile),
		profileByUsername:  make(map[string]string),
		profileByPrincipal: make(map[string]string),
		revoked:            make(map[string]time.Time),
		now:                time.Now,
	}
}

var (
	_ ports.PrincipalRepository = (*PrincipalRepository)(nil)
	_ ports.ProfileRepository   = (*ProfileRepository)(nil)
	_ ports.EntryRepository     = (*EntryRepository)(nil)
	_ ports.SessionStore        = (*SessionStore)(nil)
)

func (s *Store) Principals() *PrincipalRepository { return &PrincipalRepository{s: s} }
func (s *Store) Profiles() *ProfileRepository     { return &ProfileRepository{s: s} }
func (s *Store) Entries() *EntryRepository        { return &EntryRepository{s: s} }
func (s *Store) Sessions() *SessionStore          { return &SessionStore{s: s} }

// PrincipalRepository is the ports.PrincipalRepository view of a Store.
type PrincipalRepository struct {
	s *Store
}

func (r *PrincipalRepository) Create(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.principalByEmail[p.Email]; exists {
		return nil, domain.ErrPrincipalExists
	}
	clone := *p
	s.principals[clone.ID] = clone
	s.principalByEmail[clone.Email] = clone.ID
	return &clone, nil
}

func (r *PrincipalRepository) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.principalByEmail[email]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	p := s.principals[id]
	return &p, nil
}

func (r *PrincipalRepository) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	return &p, nil
}

// SessionStore is the ports.SessionStore view of a Store.
type SessionStore struct {
	s *Store
}

func (r *SessionStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (r *SessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && s.now().After(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// EntryRepository is the ports.EntryRepository view of a Store.
type EntryRepository struct {
	s *Store
}

func (r *EntryRepository) Append(_ context.Context, e *domain.Entry) (*domain.Entry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[e.ProfileID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	s.seq++
	clone := *e
	clone.ID = strconv.FormatInt(s.seq, 10)
	s.entries = append(s.entries, storedEntry{seq: s.seq, entry: clone})
	out := clone
	return &out, nil
}

func (r *EntryRepository) ListByProfile(_ context.Context, profileID string, stream domain.Stream) ([]*domain.Entry, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []storedEntry
	for _, se := range s.entries {
		if se.entry.ProfileID == profileID && se.entry.Stream == stream {
			matched = append(matched, se)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].entry.CreatedAt, matched[j].entry.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]*domain.Entry, 0, len(matched))
	for _, se := range matched {
		e := se.entry
		out = append(out, &e)
	}
	return out, nil
}
