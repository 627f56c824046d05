package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

const defaultViewTTL = 30 * time.Second

var _ ports.ViewCache = (*ViewCache)(nil)

// ViewCache keeps assembled public profile views as JSON.
// Key format: view:<canonical_username>:<generation>, with the generation
// counter at view:gen:<canonical_username>.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

func (c *ViewCache) Generation(ctx context.Context, username string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("view cache generation: %w", err)
	}
	return gen, nil
}

func (c *ViewCache) Get(ctx context.Context, username string, gen int64) (*ports.ProfileView, bool, error) {
	key := c.key(username, gen)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("view cache get: %w", err)
	}

	var view ports.ProfileView
	if err := json.Unmarshal(data, &view); err != nil {
		// A payload from an older layout is treated as a miss.
		_ = c.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	restoreProfileIDs(&view)
	return &view, true, nil
}

func (c *ViewCache) Set(ctx context.Context, username string, gen int64, view *ports.ProfileView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("view cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key(username, gen), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("view cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the generation of every username. Views stored under an
// older generation are left to expire.
func (c *ViewCache) Invalidate(ctx context.Context, usernames ...string) error {
	if len(usernames) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	for _, u := range usernames {
		pipe.Incr(ctx, c.genKey(u))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("view cache invalidate: %w", err)
	}
	return nil
}

func (c *ViewCache) key(username string, gen int64) string {
	return "view:" + username + ":" + strconv.FormatInt(gen, 10)
}

func (c *ViewCache) genKey(username string) string {
	return "view:gen:" + username
}

// restoreProfileIDs fills fields that are not serialised on entries.
func restoreProfileIDs(view *ports.ProfileView) {
	if view.Profile == nil {
		return
	}
	for _, e := range append(view.Thoughts.All(), view.People.All()...) {
		e.ProfileID = view.Profile.ID
	}
	if view.Thoughts.History == nil {
		view.Thoughts.History = []*domain.Entry{}
	}
	if view.People.History == nil {
		view.People.History = []*domain.Entry{}
	}
}
