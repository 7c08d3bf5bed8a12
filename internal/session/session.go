// Package session tracks live lecturer sessions so that logout genuinely
// destroys identity even though access tokens are stateless.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds active session ids.
type Store interface {
	Create(ctx context.Context, id string, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Destroy(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with a TTL matching the token lifetime.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(id string) string { return "trackas:session:" + id }

// Create registers a session id.
func (s *RedisStore) Create(ctx context.Context, id string, ttl time.Duration) error {
	return s.client.Set(ctx, key(id), 1, ttl).Err()
}

// Exists reports whether the session is still live.
func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Destroy removes a session id.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, key(id)).Err()
}

// MemoryStore is a process-local store for dev and tests.
type MemoryStore struct {
	mu    sync.Mutex
	until map[string]time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{until: make(map[string]time.Time)}
}

func (s *MemoryStore) Create(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until[id] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.until[id]
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		delete(s.until, id)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.until, id)
	return nil
}
