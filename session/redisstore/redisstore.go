// Package redisstore keeps the session slot in Redis under a key prefix, so
// several machines can share one login.
package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/go-leads-client/session"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 3 * time.Second

var _ session.Store = (*RedisStore)(nil)

type RedisStore struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the connection with a PING.
func Dial(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redisstore.Dial Ping")
	}
	return New(client, prefix), nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "RedisStore.Get")
	}
	return v, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return errors.Wrap(s.client.Set(ctx, s.prefix+key, value, 0).Err(), "RedisStore.Set")
}

func (s *RedisStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.prefix+k)
	}
	return errors.Wrap(s.client.Del(ctx, prefixed...).Err(), "RedisStore.Delete")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
