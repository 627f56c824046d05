package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db/memory"
)

// site wires every service against one in-memory store, the way the server
// does with STORE_DRIVER=memory.
type site struct {
	auth     *AuthService
	registry *RegistryService
	guard    *GuardService
	ledger   *LedgerService
	public   *PublicService
}

func newSite() *site {
	store := memory.NewStore()
	log := zerolog.Nop()
	registry := NewRegistryService(store.Profiles(), nil, log)
	ledger := NewLedgerService(registry, store.Entries(), nil, log)
	return &site{
		auth:     NewAuthService(store.Principals(), store.Sessions(), "secret", 0, log),
		registry: registry,
		guard:    NewGuardService(registry, log),
		ledger:   ledger,
		public:   NewPublicService(registry, ledger, nil, log),
	}
}

func (s *site) signUp(t *testing.T, email string) *domain.Principal {
	t.Helper()
	p, err := s.auth.SignUp(context.Background(), email, "password1")
	require.NoError(t, err)
	return p
}

func TestSite_UsernamesAreCaseInsensitivelyUnique(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	a := s.signUp(t, "a@example.com")
	b := s.signUp(t, "b@example.com")

	_, err := s.registry.RegisterIfAbsent(ctx, a, "Alice", "")
	require.NoError(t, err)

	_, err = s.registry.RegisterIfAbsent(ctx, b, "alice", "")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	avail, err := s.registry.Availability(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityTaken, avail)
}

func TestSite_PostingFlow(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	carol := s.signUp(t, "carol@example.com")

	d, err := s.guard.EnsureAccess(ctx, "carol", carol)
	require.NoError(t, err)
	require.Equal(t, ports.AccessCreated, d.Outcome)

	_, err = s.ledger.Append(ctx, "carol", domain.StreamThought, "hello")
	require.NoError(t, err)
	_, err = s.ledger.Append(ctx, "carol", domain.StreamThought, "world")
	require.NoError(t, err)

	view, err := s.public.ProfileView(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, view.Thoughts.Current)
	assert.Equal(t, "world", view.Thoughts.Current.Content)
	require.Len(t, view.Thoughts.History, 1)
	assert.Equal(t, "hello", view.Thoughts.History[0].Content)
	assert.True(t, view.People.Empty())

	d, err = s.guard.EnsureAccess(ctx, "carol", carol)
	require.NoError(t, err)
	assert.Equal(t, ports.AccessOwner, d.Outcome)
}

func TestSite_BlankContentLeavesNoTrace(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	carol := s.signUp(t, "carol@example.com")
	_, err := s.registry.RegisterIfAbsent(ctx, carol, "carol", "")
	require.NoError(t, err)

	_, err = s.ledger.Append(ctx, "carol", domain.StreamPeople, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	view, err := s.ledger.CurrentAndHistory(ctx, "carol", domain.StreamPeople)
	require.NoError(t, err)
	assert.True(t, view.Empty())

	_, err = s.public.ProfileView(ctx, "carol")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSite_MixedCaseDashboardRedirects(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	alice := s.signUp(t, "alice@example.com")
	_, err := s.registry.RegisterIfAbsent(ctx, alice, "alice", "")
	require.NoError(t, err)

	d, err := s.guard.EnsureAccess(ctx, "ALICE", alice)
	require.NoError(t, err)
	assert.Equal(t, ports.AccessRedirect, d.Outcome)
	assert.Equal(t, ports.ReasonCanonical, d.Reason)
	assert.Equal(t, "alice", d.Username)
}

func TestSite_RenameKeepsEntries(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	alice := s.signUp(t, "alice@example.com")
	_, err := s.registry.RegisterIfAbsent(ctx, alice, "alice", "")
	require.NoError(t, err)
	_, err = s.ledger.Append(ctx, "alice", domain.StreamThought, "before the rename")
	require.NoError(t, err)

	_, err = s.registry.Rename(ctx, alice, "alice", "bob")
	require.NoError(t, err)

	_, err = s.public.ProfileView(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	view, err := s.public.ProfileView(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "before the rename", view.Thoughts.Current.Content)
	assert.Equal(t, "bob", view.Thoughts.Current.Username)

	avail, err := s.registry.Availability(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityAvailable, avail)
}

func TestSite_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	const racers = 8
	principals := make([]*domain.Principal, racers)
	for i := range principals {
		principals[i] = s.signUp(t, "racer"+string(rune('a'+i))+"@example.com")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		lost    int
	)
	for _, p := range principals {
		wg.Add(1)
		go func(p *domain.Principal) {
			defer wg.Done()
			d, err := s.guard.EnsureAccess(ctx, "dave", p)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			case d.Outcome == ports.AccessCreated:
				created++
			case d.Outcome == ports.AccessRedirect && d.Reason == ports.ReasonNotOwner:
				lost++
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, racers-1, lost)

	owner, err := s.registry.ResolveOwner(ctx, "dave")
	require.NoError(t, err)
	winners := 0
	for _, p := range principals {
		if owner.OwnedBy(p) {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestSite_ConcurrentRegisterReturnsTaken(t *testing.T) {
	s := newSite()
	ctx := context.Background()
	a := s.signUp(t, "a@example.com")
	b := s.signUp(t, "b@example.com")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, p := range []*domain.Principal{a, b} {
		wg.Add(1)
		go func(p *domain.Principal) {
			defer wg.Done()
			_, err := s.registry.RegisterIfAbsent(ctx, p, "dave", "")
			errs <- err
		}(p)
	}
	wg.Wait()
	close(errs)

	var ok, taken int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrUsernameTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, taken)
}
