package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks backed by Redis.
// Key format: dedup:activity:<activity_id>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client, ttl: dedupTTL}
}

// IsDuplicate reports whether this activity has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, activityID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(activityID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this activity has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, activityID string) error {
	return d.client.Set(ctx, dedupKey(activityID), "1", d.ttl).Err()
}

func dedupKey(activityID string) string {
	return "dedup:activity:" + activityID
}
