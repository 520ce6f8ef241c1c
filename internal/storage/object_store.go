package storage

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable means no storage backend is configured. Distinct from
// operational failures so callers can answer 503 rather than 500.
var ErrUnavailable = errors.New("object storage not configured")

// ErrNotFound means the key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore stores byte blobs by key.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	List(ctx context.Context, prefix string, maxKeys int) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectStore builds a Redis-backed store, or an unavailable one when no
// client is configured.
func NewObjectStore(client *redis.Client, keyPrefix string) ObjectStore {
	if client == nil {
		return unavailableStore{}
	}
	return &redisStore{client: client, keyPrefix: keyPrefix}
}

type redisStore struct {
	client    *redis.Client
	keyPrefix string
}

func (s *redisStore) storageKey(key string) string {
	return s.keyPrefix + ":" + key
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *redisStore) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.storageKey(key), data, 0).Err()
}

func (s *redisStore) List(ctx context.Context, prefix string, maxKeys int) ([]string, error) {
	if maxKeys <= 0 {
		maxKeys = 100
	}
	match := s.storageKey(prefix) + "*"
	keys := []string{}
	iter := s.client.Scan(ctx, 0, match, int64(maxKeys)).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.keyPrefix+":"))
		if len(keys) >= maxKeys {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	deleted, err := s.client.Del(ctx, s.storageKey(key)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// unavailableStore reports Unavailable for every operation.
type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }
func (unavailableStore) Put(context.Context, string, []byte) error   { return ErrUnavailable }
func (unavailableStore) List(context.Context, string, int) ([]string, error) {
	return nil, ErrUnavailable
}
func (unavailableStore) Delete(context.Context, string) error { return ErrUnavailable }
