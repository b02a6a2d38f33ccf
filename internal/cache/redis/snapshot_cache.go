package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perpx/arbot/internal/domain"
)

const (
	snapshotKey = "arbot:snapshot"

	// snapshotTTL keeps stale snapshots from outliving a dead bot by much.
	snapshotTTL = 10 * time.Second
)

// SnapshotCache implements domain.SnapshotCache on a single Redis key holding
// the JSON-encoded latest cycle snapshot.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

// SetSnapshot overwrites the published snapshot.
func (sc *SnapshotCache) SetSnapshot(ctx context.Context, snap domain.CycleSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := sc.rdb.Set(ctx, snapshotKey, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}
	return nil
}

// GetSnapshot reads the latest published snapshot. It returns
// domain.ErrNotFound when no snapshot is live.
func (sc *SnapshotCache) GetSnapshot(ctx context.Context) (domain.CycleSnapshot, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CycleSnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CycleSnapshot{}, fmt.Errorf("redis: get snapshot: %w", err)
	}
	var snap domain.CycleSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.CycleSnapshot{}, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return snap, nil
}
