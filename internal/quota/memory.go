package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps guest counters in process memory. Used when Redis is not
// configured; counters still expire so guests recover quota over time.
type MemoryStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStore builds an in-memory store with the given counter TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Increment bumps the counter and returns the new value. The mutex makes the
// add-or-increment sequence atomic for concurrent callers.
func (s *MemoryStore) Increment(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Add(key, 1, s.ttl); err == nil {
		return 1, nil
	}
	count, err := s.cache.IncrementInt(key, 1)
	if err != nil {
		return 0, fmt.Errorf("memory incr: %w", err)
	}
	return count, nil
}

var _ Store = (*MemoryStore)(nil)
