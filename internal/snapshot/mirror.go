package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keys holding the mirrored snapshot.
const (
	KeyLatest  = "ledger:snapshot:latest"
	KeyVersion = "ledger:snapshot:version"
)

// RedisMirror publishes the latest snapshot to Redis.
type RedisMirror struct {
	client *redis.Client
}

// NewRedisMirror constructs a mirror.
func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

// Publish replaces the mirrored snapshot unless Redis already holds a newer
// version.
func (m *RedisMirror) Publish(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: mirror encode: %w", err)
	}
	err = m.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, KeyVersion).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current > snap.Version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, KeyLatest, payload, 0)
			pipe.Set(ctx, KeyVersion, snap.Version, 0)
			return nil
		})
		return err
	}, KeyVersion)
	if err != nil {
		return fmt.Errorf("snapshot: mirror publish: %w", err)
	}
	return nil
}

// Latest reads the mirrored snapshot.
func (m *RedisMirror) Latest(ctx context.Context) (Snapshot, error) {
	raw, err := m.client.Get(ctx, KeyLatest).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: mirror latest: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: mirror decode: %w", err)
	}
	return snap, nil
}

// Version returns the mirrored version, zero when empty.
func (m *RedisMirror) Version(ctx context.Context) (int64, error) {
	v, err := m.client.Get(ctx, KeyVersion).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("snapshot: mirror version: %w", err)
	}
	return v, nil
}
