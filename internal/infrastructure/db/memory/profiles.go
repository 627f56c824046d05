package memory

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// ProfileRepository is the ports.ProfileRepository view of a Store.
type ProfileRepository struct {
	s *Store
}

func (r *ProfileRepository) Create(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.profileByUsername[p.Username]; taken {
		return nil, domain.ErrUsernameTaken
	}
	if _, owns := s.profileByPrincipal[p.PrincipalID]; owns {
		return nil, domain.ErrPrincipalRegistered
	}
	clone := *p
	s.profiles[clone.ID] = clone
	s.profileByUsername[clone.Username] = clone.ID
	s.profileByPrincipal[clone.PrincipalID] = clone.ID
	return &clone, nil
}

func (r *ProfileRepository) FindByUsername(_ context.Context, username string) (*domain.Profile, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.profileByUsername[username]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p := s.profiles[id]
	return &p, nil
}

func (r *ProfileRepository) FindByPrincipal(_ context.Context, principalID string) (*domain.Profile, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.profileByPrincipal[principalID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p := s.profiles[id]
	return &p, nil
}

func (r *ProfileRepository) Rename(_ context.Context, profileID, username, displayUsername string) (*domain.Profile, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if owner, taken := s.profileByUsername[username]; taken && owner != profileID {
		return nil, domain.ErrUsernameTaken
	}

	delete(s.profileByUsername, p.Username)
	p.Username = username
	p.DisplayUsername = displayUsername
	p.UpdatedAt = s.now().UTC()
	s.profiles[profileID] = p
	s.profileByUsername[username] = profileID
	return &p, nil
}
