package prompt

import (
	"context"
	"sync"
	"time"

	"motionpitch/internal/infra"
)

// CacheCreator is the provider operation the manager needs.
type CacheCreator interface {
	CreateCachedContent(ctx context.Context, instruction string, ttl time.Duration) (string, error)
}

// CacheManager lazily creates the remote context cache holding the architect
// instruction and memoizes the handle for the rest of the process lifetime.
// Exactly one creation attempt is made per process; a failed attempt degrades
// to planning without a cache rather than erroring.
type CacheManager struct {
	client CacheCreator
	ttl    time.Duration
	logger infra.Logger

	once   sync.Once
	handle string
}

// NewCacheManager builds a manager around the given provider client.
func NewCacheManager(client CacheCreator, ttl time.Duration, logger infra.Logger) *CacheManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CacheManager{client: client, ttl: ttl, logger: logger}
}

// GetOrCreate returns the cached context handle, creating it on first use.
// An empty string means "plan without a cached context" and is a valid,
// degraded state.
func (m *CacheManager) GetOrCreate(ctx context.Context) string {
	m.once.Do(func() {
		handle, err := m.client.CreateCachedContent(ctx, ArchitectInstruction, m.ttl)
		if err != nil {
			m.logger.Warn().Err(err).Msg("prompt: cache creation failed, using standard prompt")
			return
		}
		m.handle = handle
	})
	return m.handle
}
