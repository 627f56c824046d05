package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore records revoked session token ids until the token would
// have expired anyway.
// Key format: revoked:<token_id>
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke marks tokenID as signed out. Tokens already past expiresAt need no
// record.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return domain.Unavailable("redis revoke session", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been signed out.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, domain.Unavailable("redis session check", err)
	}
	return n > 0, nil
}

func (s *SessionStore) key(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}
