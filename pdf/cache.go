package pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/redis/go-redis/v9"
)

// Compile-time checks
var (
	_ interfaces.PDFCache = (*MemoryCache)(nil)
	_ interfaces.PDFCache = (*RedisCache)(nil)
	_ interfaces.PDFCache = NoCache{}
)

// MemoryCache is a size bounded LRU whose entries expire after a fixed TTL.
// Expired entries are dropped by the cache itself.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates a cache holding at most capacity documents for ttl
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get returns a cached document that has not expired
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	pdf, ok := m.lru.Get(key)
	return pdf, ok, nil
}

// Set stores a document, evicting the least recently used one when full.
// Every entry lives for the TTL given to NewMemoryCache.
func (m *MemoryCache) Set(_ context.Context, key string, pdf []byte, _ time.Duration) error {
	m.lru.Add(key, pdf)
	return nil
}

// Len returns the number of cached documents
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

const redisKeyPrefix = "remedy:pdf:"

// RedisCache stores documents in Redis so several instances share renders
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily; use Ping to check availability
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

// Get returns a cached document; a missing key is a miss, not an error
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Set stores a document with a TTL
func (r *RedisCache) Set(ctx context.Context, key string, pdf []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, pdf, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks the connection
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// NoCache never stores anything
type NoCache struct{}

// Get always misses
func (NoCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the document
func (NoCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
