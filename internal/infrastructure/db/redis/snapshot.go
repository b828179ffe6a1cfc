package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// SnapshotStore keeps session snapshots in Redis.
// Key format: session:<snapshot key>
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore returns a store whose entries expire after ttl. A zero ttl
// keeps snapshots until they are cleared.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, snapshotKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return b, nil
}

func (s *SnapshotStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, snapshotKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, snapshotKey(key)).Err(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func snapshotKey(key string) string {
	return "session:" + key
}
