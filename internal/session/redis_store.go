package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session records in Redis, delegating expiration to the
// server-side TTL. It honors the same Set/Get/Delete contract as SQLStore.
type RedisStore struct {
	client *redis.Client
	codec  Codec
	prefix string
}

// NewRedisStore creates a Redis-backed session store. A nil codec selects the
// default JSON codec.
func NewRedisStore(client *redis.Client, codec Codec) *RedisStore {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &RedisStore{
		client: client,
		codec:  codec,
		prefix: "session:",
	}
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

func (r *RedisStore) Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error {
	if key == "" {
		return errors.New("session: empty key")
	}
	if ttl < 0 {
		return errors.New("session: negative ttl")
	}
	if ttl == 0 {
		// Expired on arrival. An expired record is indistinguishable from an
		// absent one, so store nothing and clear any previous value.
		return r.client.Del(ctx, r.key(key)).Err()
	}

	data, err := r.codec.Encode(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) (map[string]any, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	return r.codec.Decode(data)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
