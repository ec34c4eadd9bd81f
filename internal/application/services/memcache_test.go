package services_test

import (
	"context"
	"sync"
	"time"
)

// memCache is an in-memory ports.Cache with real TTL expiry, used to exercise
// the facade's full contract without a Redis backend.
type memCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	data     []byte
	deadline time.Time // zero means no expiration
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]memEntry{}}
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{data: append([]byte(nil), value...)}
	if ttl > 0 {
		e.deadline = time.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, k := range keys {
		if _, ok := m.entries[k]; ok {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

func (m *memCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]memEntry{}
	return nil
}

// errCache fails every operation, standing in for an unreachable backend.
type errCache struct{ err error }

func (e *errCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, e.err
}
func (e *errCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return e.err
}
func (e *errCache) Delete(ctx context.Context, keys ...string) (int64, error) { return 0, e.err }
func (e *errCache) Clear(ctx context.Context) error                           { return e.err }
