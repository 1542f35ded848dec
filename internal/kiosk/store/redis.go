package store

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"ms-scanning/internal/kiosk"
)

// RedisStore keeps queue snapshots under a single key, for kiosks backed by
// a local Redis instead of the filesystem.
type RedisStore struct {
	Client *redis.Client
	Key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{Client: client, Key: key}
}

func (s *RedisStore) Load() ([]kiosk.PendingScan, error) {
	data, err := s.Client.Get(context.Background(), s.Key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var scans []kiosk.PendingScan
	if err := json.Unmarshal([]byte(data), &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

func (s *RedisStore) Save(scans []kiosk.PendingScan) error {
	data, err := json.Marshal(scans)
	if err != nil {
		return err
	}
	return s.Client.Set(context.Background(), s.Key, data, 0).Err()
}
