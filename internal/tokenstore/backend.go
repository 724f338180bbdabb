package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/erpdesk/sessiond/internal/db/controller/entry"
)

// Backend is raw key/value storage.
// Get returns nil, nil for a missing or expired key. A zero exp means no expiry.
// The gofiber storage drivers satisfy this interface.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Reset() error
	Close() error
}

type memoryItem struct {
	val       []byte
	expiresAt time.Time
}

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]memoryItem), now: time.Now}
}

// Get implements Backend.
func (m *MemoryBackend) Get(key string) ([]byte, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()

		return nil, nil
	}

	out := make([]byte, len(item.val))
	copy(out, item.val)

	return out, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(key string, val []byte, exp time.Duration) error {
	item := memoryItem{val: append([]byte(nil), val...)}
	if exp > 0 {
		item.expiresAt = m.now().Add(exp)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()

	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()

	return nil
}

// Reset implements Backend.
func (m *MemoryBackend) Reset() error {
	m.mu.Lock()
	m.items = make(map[string]memoryItem)
	m.mu.Unlock()

	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error { return nil }

// Sweeper is implemented by backends whose expired entries stay on disk until removed.
type Sweeper interface {
	Sweep() (int64, error)
}

// GormBackend stores entries in the session_entries table.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend wraps an already migrated connection.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// Get implements Backend.
func (g *GormBackend) Get(key string) ([]byte, error) {
	e, err := entry.Get(g.db, key)
	if errors.Is(err, entry.ErrEntryNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("gorm get %s: %w", key, err)
	}

	return e.Value, nil
}

// Set implements Backend.
func (g *GormBackend) Set(key string, val []byte, exp time.Duration) error {
	if _, err := entry.Set(g.db, key, val, exp); err != nil {
		return fmt.Errorf("gorm set %s: %w", key, err)
	}

	return nil
}

// Delete implements Backend.
func (g *GormBackend) Delete(key string) error {
	return entry.Delete(g.db, key)
}

// Reset implements Backend.
func (g *GormBackend) Reset() error {
	return entry.Reset(g.db)
}

// Sweep implements Sweeper.
func (g *GormBackend) Sweep() (int64, error) {
	return entry.DeleteExpired(g.db)
}

// Close implements Backend.
func (g *GormBackend) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}

const redisOpTimeout = 2 * time.Second

// RedisBackend stores entries under a key prefix in redis.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend uses client for every operation. Keys are namespaced by prefix.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) key(k string) string { return r.prefix + k }

// Get implements Backend.
func (r *RedisBackend) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return val, nil
}

// Set implements Backend.
func (r *RedisBackend) Set(key string, val []byte, exp time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(key), val, exp).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete implements Backend.
func (r *RedisBackend) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}

	return nil
}

// Reset removes every key under the prefix.
func (r *RedisBackend) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis reset: %w", err)
		}
	}

	return iter.Err() //nolint:wrapcheck
}

// Close implements Backend.
func (r *RedisBackend) Close() error {
	return r.client.Close() //nolint:wrapcheck
}
