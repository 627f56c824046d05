package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// RegistryService is the username registry: one canonical username per
// principal, unique case-insensitively.
type RegistryService struct {
	profiles ports.ProfileRepository
	cache    ports.ViewCache
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegistryService returns a RegistryService. cache may be nil.
func NewRegistryService(profiles ports.ProfileRepository, cache ports.ViewCache, log zerolog.Logger) *RegistryService {
	if cache == nil {
		cache = noopCache{}
	}
	return &RegistryService{profiles: profiles, cache: cache, log: log, now: time.Now}
}

// ResolveOwner returns the profile registered under username, ignoring case.
func (s *RegistryService) ResolveOwner(ctx context.Context, username string) (*domain.Profile, error) {
	key := domain.CanonicalUsername(username)
	if key == "" {
		return nil, domain.ErrProfileNotFound
	}
	return s.profiles.FindByUsername(ctx, key)
}

// RegisterIfAbsent claims username for principal unless the principal or the
// username is already bound elsewhere.
func (s *RegistryService) RegisterIfAbsent(ctx context.Context, principal *domain.Principal, username, displayName string) (*domain.Profile, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	username = strings.TrimSpace(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	key := domain.CanonicalUsername(username)

	if existing, err := s.ownProfile(ctx, principal); err != nil {
		return nil, err
	} else if existing != nil {
		if existing.Username == key {
			return existing, nil
		}
		return nil, &domain.AlreadyRegisteredError{Username: existing.Username}
	}

	other, err := s.profiles.FindByUsername(ctx, key)
	switch {
	case err == nil && other.PrincipalID != principal.ID:
		return nil, domain.ErrUsernameTaken
	case err == nil:
		return other, nil
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.profiles.Create(ctx, &domain.Profile{
		ID:              uuid.NewString(),
		PrincipalID:     principal.ID,
		PrincipalEmail:  principal.Email,
		Username:        key,
		DisplayUsername: username,
		DisplayName:     strings.TrimSpace(displayName),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalRegistered) {
			// Lost a race against another request from the same principal.
			return s.afterPrincipalConflict(ctx, principal, key)
		}
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("username", key).Msg("view cache invalidation failed")
	}
	s.log.Info().Str("username", key).Str("principal_id", principal.ID).Msg("profile registered")
	return created, nil
}

func (s *RegistryService) afterPrincipalConflict(ctx context.Context, principal *domain.Principal, key string) (*domain.Profile, error) {
	existing, err := s.profiles.FindByPrincipal(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing.Username == key {
		return existing, nil
	}
	return nil, &domain.AlreadyRegisteredError{Username: existing.Username}
}

// Rename moves principal's profile from oldUsername to newUsername.
func (s *RegistryService) Rename(ctx context.Context, principal *domain.Principal, oldUsername, newUsername string) (*domain.Profile, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	newUsername = strings.TrimSpace(newUsername)
	if err := domain.ValidateUsername(newUsername); err != nil {
		return nil, err
	}
	if newUsername == strings.TrimSpace(oldUsername) {
		return nil, domain.ErrSameUsername
	}

	current, err := s.ResolveOwner(ctx, oldUsername)
	if err != nil {
		return nil, err
	}
	if !current.OwnedBy(principal) {
		return nil, domain.ErrForbidden
	}

	newKey := domain.CanonicalUsername(newUsername)
	if newKey != current.Username {
		other, err := s.profiles.FindByUsername(ctx, newKey)
		if err == nil && other.ID != current.ID {
			return nil, domain.ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, fmt.Errorf("rename: %w", err)
		}
	}

	renamed, err := s.profiles.Rename(ctx, current.ID, newKey, newUsername)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, current.Username, newKey); err != nil {
		s.log.Warn().Err(err).Str("from", current.Username).Str("to", newKey).Msg("view cache invalidation failed")
	}
	s.log.Info().Str("from", current.Username).Str("to", newKey).Str("profile_id", current.ID).Msg("profile renamed")
	return renamed, nil
}

// Availability reports whether username could be claimed right now.
func (s *RegistryService) Availability(ctx context.Context, username string) (domain.Availability, error) {
	username = strings.TrimSpace(username)
	if domain.ValidateUsername(username) != nil {
		return domain.AvailabilityInvalid, nil
	}
	_, err := s.profiles.FindByUsername(ctx, domain.CanonicalUsername(username))
	switch {
	case err == nil:
		return domain.AvailabilityTaken, nil
	case errors.Is(err, domain.ErrProfileNotFound):
		return domain.AvailabilityAvailable, nil
	default:
		return "", fmt.Errorf("availability: %w", err)
	}
}

func (s *RegistryService) ProfileOf(ctx context.Context, principal *domain.Principal) (*domain.Profile, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.profiles.FindByPrincipal(ctx, principal.ID)
}

func (s *RegistryService) ownProfile(ctx context.Context, principal *domain.Principal) (*domain.Profile, error) {
	p, err := s.profiles.FindByPrincipal(ctx, principal.ID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return p, nil
}
