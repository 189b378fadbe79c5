// Package cache provides the short-lived key-value store used to hand off
// OAuth state and exchanged credentials between requests. Every operation
// attempts the external Redis store first and transparently falls back to a
// process-local memory store when Redis is unreachable; callers never see a
// store error.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPort = "6379"

// Commands is the subset of the Redis client surface the store relies on.
type Commands interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Config struct {
	// Addr is the Redis host:port. A bare host gets the default port.
	Addr string
	// Client overrides Addr when set; used by tests and callers that manage
	// their own connection pool.
	Client Commands
	Now    func() time.Time
}

// Store is a Redis-backed key-value store with an in-memory fallback. The
// fallback path is shared process state and is safe for concurrent use.
type Store struct {
	client   Commands
	fallback *MemoryStore
}

func New(cfg Config) *Store {
	client := cfg.Client
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr: normalizeAddr(cfg.Addr),
		})
	}
	return &Store{
		client:   client,
		fallback: NewMemoryStore(cfg.Now),
	}
}

// Put stores value under key. A positive ttl bounds the entry's lifetime; a
// zero ttl stores it without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if s == nil || strings.TrimSpace(key) == "" {
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.fallback.Put(ctx, key, value, ttl)
	}
}

// Get returns the value stored under key, or false when the key is absent or
// expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s == nil || strings.TrimSpace(key) == "" {
		return nil, false
	}
	value, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		return value, true
	}
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	return s.fallback.Get(ctx, key)
}

// Delete removes key from the store. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) {
	if s == nil || strings.TrimSpace(key) == "" {
		return
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.fallback.Delete(ctx, key)
	}
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if closer, ok := s.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "localhost:" + defaultRedisPort
	}
	if !strings.Contains(addr, ":") {
		return addr + ":" + defaultRedisPort
	}
	return addr
}
