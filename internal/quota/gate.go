package quota

import (
	"context"
	"fmt"

	"motionpitch/internal/domain"
)

// Store tracks per-guest usage counters. Increment must be atomic so that
// concurrent requests from the same guest cannot slip past the limit.
type Store interface {
	Increment(ctx context.Context, key string) (int, error)
}

// Gate enforces the guest usage limit. Authenticated callers bypass it
// entirely; their usage is tracked on the user record by ownership only.
type Gate struct {
	store Store
	limit int
}

// NewGate builds a gate over the given store.
func NewGate(store Store, limit int) *Gate {
	if limit <= 0 {
		limit = 15
	}
	return &Gate{store: store, limit: limit}
}

// Limit returns the configured guest limit.
func (g *Gate) Limit() int {
	return g.limit
}

// CheckAndConsume consumes one unit of guest quota. It returns the remaining
// allowance, or domain.ErrQuotaExceeded once the guest is over the limit.
// Counting past the limit is harmless: the counter expires with its TTL and
// every over-limit request is denied.
func (g *Gate) CheckAndConsume(ctx context.Context, userID, guestID string) (int, error) {
	if userID != "" {
		return 0, nil
	}
	if guestID == "" {
		return 0, fmt.Errorf("quota: guest id is required: %w", domain.ErrInvalidRequest)
	}

	count, err := g.store.Increment(ctx, "guest_usage:"+guestID)
	if err != nil {
		return 0, fmt.Errorf("quota: increment: %w", err)
	}
	if count > g.limit {
		return 0, domain.ErrQuotaExceeded
	}
	return g.limit - count, nil
}
