// Package redis provides a Store backed by Redis, for identities shared
// between machines.
package redis

import (
	"context"
	"time"

	"github.com/omochice/chat-bridge/internal/storage"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Config is used to connect to Redis.
type Config struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// Store keeps each key under Namespace+key with no expiry.
type Store struct {
	client    *redis.Client
	namespace string
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, c Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return New(rdb, c.Namespace), nil
}

// New wraps an existing client.
func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(key string) string { return s.namespace + key }

// Get implements storage.Store.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "get %q", key)
	}
	return val, nil
}

// Set implements storage.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
