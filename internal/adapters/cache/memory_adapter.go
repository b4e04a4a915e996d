package cache

import (
	"context"
	"path"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryAdapter implements CacheProvider in process. It backs single-node
// deployments that run without Redis.
type MemoryAdapter struct {
	mu    sync.Mutex
	items *lru.Cache[string, memoryEntry]
	now   func() time.Time
}

// NewMemoryAdapter creates an in-process cache holding at most size keys
func NewMemoryAdapter(size int) (*MemoryAdapter, error) {
	items, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryAdapter{items: items, now: time.Now}, nil
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

func (a *MemoryAdapter) lookup(key string) ([]byte, bool) {
	entry, ok := a.items.Get(key)
	if !ok {
		return nil, false
	}
	if entry.expired(a.now()) {
		a.items.Remove(key)
		return nil, false
	}
	return entry.value, true
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if value, ok := a.lookup(key); ok {
		return value, nil
	}
	return nil, providers.ErrCacheMiss
}

// GetMulti retrieves several values; missing keys are omitted
func (a *MemoryAdapter) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := a.lookup(key); ok {
			out[key] = value
		}
	}
	return out, nil
}

// Set stores a value; expirationSeconds <= 0 keeps it until evicted
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items.Add(key, a.entry(value, expirationSeconds))
	return nil
}

// SetMulti stores several values with the same expiration
func (a *MemoryAdapter) SetMulti(_ context.Context, items map[string][]byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, value := range items {
		a.items.Add(key, a.entry(value, expirationSeconds))
	}
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items.Remove(key)
	return nil
}

// DeletePattern removes every key matching a glob pattern
func (a *MemoryAdapter) DeletePattern(_ context.Context, pattern string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, key := range a.items.Keys() {
		if ok, _ := path.Match(pattern, key); ok {
			a.items.Remove(key)
		}
	}
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.lookup(key)
	return ok, nil
}

func (a *MemoryAdapter) entry(value []byte, expirationSeconds int) memoryEntry {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		entry.expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	return entry
}
