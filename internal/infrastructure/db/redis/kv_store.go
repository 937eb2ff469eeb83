package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lyvo/session-gateway/internal/core/ports"
)

const defaultPrefix = "lyvo"

// ChangeNotice is published on the storage channel after every mutation, in
// the same transaction as the write.
type ChangeNotice struct {
	DeviceID string    `json:"device"`
	TabID    string    `json:"tab,omitempty"`
	Keys     []string  `json:"keys"`
	At       time.Time `json:"at"`
}

// KVStore is device-scoped key/value storage.
// Key format: <prefix>:<device_id>:<key>
type KVStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewKVStore creates a KVStore. An empty prefix falls back to "lyvo".
func NewKVStore(client redis.UniversalClient, prefix string) *KVStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &KVStore{client: client, prefix: prefix, now: time.Now}
}

// Channel is the pub/sub channel change notices are published on.
func (s *KVStore) Channel() string {
	return StorageChannel(s.prefix)
}

// StorageChannel returns the change notice channel for prefix.
func StorageChannel(prefix string) string {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return prefix + ":storage"
}

func (s *KVStore) Get(ctx context.Context, deviceID, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(deviceID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// SetMany writes every pair and publishes one change notice inside a single
// MULTI/EXEC.
func (s *KVStore) SetMany(ctx context.Context, deviceID, originTab string, pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	notice, err := s.notice(deviceID, originTab, keys)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Set(ctx, s.key(deviceID, k), pairs[k], 0)
		}
		pipe.Publish(ctx, s.Channel(), notice)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes keys and publishes one change notice inside a single
// MULTI/EXEC. Deleting absent keys is not an error.
func (s *KVStore) Delete(ctx context.Context, deviceID, originTab string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	notice, err := s.notice(deviceID, originTab, keys)
	if err != nil {
		return err
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(deviceID, k)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full...)
		pipe.Publish(ctx, s.Channel(), notice)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *KVStore) notice(deviceID, originTab string, keys []string) ([]byte, error) {
	raw, err := json.Marshal(ChangeNotice{DeviceID: deviceID, TabID: originTab, Keys: keys, At: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode change notice: %w", err)
	}
	return raw, nil
}

func (s *KVStore) key(deviceID, key string) string {
	return s.prefix + ":" + deviceID + ":" + key
}

var _ ports.KeyValueStore = (*KVStore)(nil)
