package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

func seedProfile(t *testing.T, s *Store, id, principalID, username string) *domain.Profile {
	t.Helper()
	p, err := s.Profiles().Create(context.Background(), &domain.Profile{
		ID:              id,
		PrincipalID:     principalID,
		Username:        username,
		DisplayUsername: username,
	})
	require.NoError(t, err)
	return p
}

func TestPrincipalRepository_UniqueEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Principals().Create(ctx, &domain.Principal{ID: "p1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = s.Principals().Create(ctx, &domain.Principal{ID: "p2", Email: "a@example.com"})
	require.ErrorIs(t, err, domain.ErrPrincipalExists)

	got, err := s.Principals().FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "p1", got.ID)

	_, err = s.Principals().FindByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrPrincipalNotFound)
}

func TestProfileRepository_UniquenessRules(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProfile(t, s, "prof1", "p1", "alice")

	_, err := s.Profiles().Create(ctx, &domain.Profile{ID: "prof2", PrincipalID: "p2", Username: "alice"})
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = s.Profiles().Create(ctx, &domain.Profile{ID: "prof3", PrincipalID: "p1", Username: "other"})
	require.ErrorIs(t, err, domain.ErrPrincipalRegistered)
}

func TestProfileRepository_RenameKeepsEntries(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProfile(t, s, "prof1", "p1", "alice")

	_, err := s.Entries().Append(ctx, &domain.Entry{ProfileID: "prof1", Stream: domain.StreamThought, Content: "hi", CreatedAt: time.Now()})
	require.NoError(t, err)

	renamed, err := s.Profiles().Rename(ctx, "prof1", "bob", "Bob")
	require.NoError(t, err)
	require.Equal(t, "bob", renamed.Username)
	require.Equal(t, "Bob", renamed.DisplayUsername)

	_, err = s.Profiles().FindByUsername(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)

	got, err := s.Profiles().FindByUsername(ctx, "bob")
	require.NoError(t, err)

	entries, err := s.Entries().ListByProfile(ctx, got.ID, domain.StreamThought)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestProfileRepository_RenameCollision(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProfile(t, s, "prof1", "p1", "alice")
	seedProfile(t, s, "prof2", "p2", "bob")

	_, err := s.Profiles().Rename(ctx, "prof1", "bob", "bob")
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = s.Profiles().Rename(ctx, "missing", "carol", "carol")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestEntryRepository_OrderingWithTies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProfile(t, s, "prof1", "p1", "alice")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, c := range []struct {
		content string
		at      time.Time
	}{
		{"old", base},
		{"tie-first", base.Add(time.Minute)},
		{"tie-second", base.Add(time.Minute)},
	} {
		_, err := s.Entries().Append(ctx, &domain.Entry{ProfileID: "prof1", Stream: domain.StreamPeople, Content: c.content, CreatedAt: c.at})
		require.NoError(t, err)
	}

	entries, err := s.Entries().ListByProfile(ctx, "prof1", domain.StreamPeople)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "tie-second", entries[0].Content)
	require.Equal(t, "tie-first", entries[1].Content)
	require.Equal(t, "old", entries[2].Content)

	others, err := s.Entries().ListByProfile(ctx, "prof1", domain.StreamThought)
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestEntryRepository_UnknownProfile(t *testing.T) {
	s := NewStore()
	_, err := s.Entries().Append(context.Background(), &domain.Entry{ProfileID: "nope", Stream: domain.StreamThought, Content: "x"})
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSessionStore_RevokeExpires(t *testing.T) {
	s := NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Sessions().Revoke(ctx, "jti-1", now.Add(time.Hour)))

	revoked, err := s.Sessions().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = s.Sessions().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	revoked, err = s.Sessions().IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, revoked)
}
