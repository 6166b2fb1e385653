package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"motionpitch/internal/domain"
)

func TestGuestAllowedUpToLimitThenDenied(t *testing.T) {
	gate := NewGate(NewMemoryStore(time.Hour), 15)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		remaining, err := gate.CheckAndConsume(ctx, "", "guest-1")
		if err != nil {
			t.Fatalf("request %d denied: %v", i, err)
		}
		if remaining != 15-i {
			t.Fatalf("request %d remaining = %d, want %d", i, remaining, 15-i)
		}
	}

	if _, err := gate.CheckAndConsume(ctx, "", "guest-1"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("16th request error = %v, want ErrQuotaExceeded", err)
	}
}

func TestAuthenticatedCallerBypassesQuota(t *testing.T) {
	gate := NewGate(NewMemoryStore(time.Hour), 2)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if _, err := gate.CheckAndConsume(ctx, "user-1", ""); err != nil {
			t.Fatalf("authenticated request %d denied: %v", i, err)
		}
	}
}

func TestGuestsTrackedIndependently(t *testing.T) {
	gate := NewGate(NewMemoryStore(time.Hour), 1)
	ctx := context.Background()

	if _, err := gate.CheckAndConsume(ctx, "", "guest-a"); err != nil {
		t.Fatalf("guest-a first request: %v", err)
	}
	if _, err := gate.CheckAndConsume(ctx, "", "guest-b"); err != nil {
		t.Fatalf("guest-b first request: %v", err)
	}
	if _, err := gate.CheckAndConsume(ctx, "", "guest-a"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("guest-a second request error = %v, want ErrQuotaExceeded", err)
	}
}

func TestMissingGuestIDRejected(t *testing.T) {
	gate := NewGate(NewMemoryStore(time.Hour), 15)
	if _, err := gate.CheckAndConsume(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestConcurrentIncrementsNeverExceedLimit(t *testing.T) {
	const limit = 15
	gate := NewGate(NewMemoryStore(time.Hour), limit)
	ctx := context.Background()

	var wg sync.WaitGroup
	allowed := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gate.CheckAndConsume(ctx, "", "guest-racy"); err == nil {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}
	if count != limit {
		t.Fatalf("allowed %d concurrent requests, want exactly %d", count, limit)
	}
}
