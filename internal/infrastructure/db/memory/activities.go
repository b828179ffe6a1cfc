package memory

import (
	"context"
	"sync"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

const defaultFeedCapacity = 1000

// ActivityRepository is a bounded feed; the oldest entries are dropped once
// capacity is reached.
type ActivityRepository struct {
	mu       sync.RWMutex
	feed     []domain.Activity
	seen     map[string]struct{}
	capacity int
}

func NewActivityRepository(capacity int) *ActivityRepository {
	if capacity <= 0 {
		capacity = defaultFeedCapacity
	}
	return &ActivityRepository{capacity: capacity, seen: make(map[string]struct{})}
}

// Insert appends a to the feed. Re-inserting the same id is a no-op.
func (r *ActivityRepository) Insert(_ context.Context, a *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[a.ID]; ok {
		return nil
	}
	r.feed = append(r.feed, *a)
	r.seen[a.ID] = struct{}{}
	if len(r.feed) > r.capacity {
		delete(r.seen, r.feed[0].ID)
		r.feed = r.feed[1:]
	}
	return nil
}

func (r *ActivityRepository) Recent(_ context.Context, limit int, clientID string) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.feed) {
		limit = len(r.feed)
	}
	out := make([]domain.Activity, 0, limit)
	for i := len(r.feed) - 1; i >= 0 && len(out) < limit; i-- {
		if clientID != "" && r.feed[i].ClientID != clientID {
			continue
		}
		out = append(out, r.feed[i])
	}
	return out, nil
}
