package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore tracks issued access tokens so they can be revoked before
// they expire.
type SessionStore interface {
	Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, accessTokenKey(userID, tokenID), "valid", ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	exists, err := s.client.Exists(ctx, accessTokenKey(userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return exists > 0, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if err := s.client.Del(ctx, accessTokenKey(userID, tokenID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// memorySessionStore is used when no Redis host is configured.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *memorySessionStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[accessTokenKey(userID, tokenID)] = s.now().Add(ttl)
	return nil
}

func (s *memorySessionStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := accessTokenKey(userID, tokenID)
	expiresAt, ok := s.sessions[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expiresAt) {
		delete(s.sessions, key)
		return false, nil
	}
	return true, nil
}

func (s *memorySessionStore) Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, accessTokenKey(userID, tokenID))
	return nil
}
