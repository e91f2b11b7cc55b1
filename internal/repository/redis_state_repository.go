package repository

import (
    "context"
    "errors"

    "github.com/redis/go-redis/v9"
)

// RedisStateRepo stores each blob as a plain Redis string.  Keys carry the
// configured prefix so several deployments can share one Redis database.
type RedisStateRepo struct {
    rdb    *redis.Client
    prefix string
}

// NewRedisStateRepo returns a repository bound to the provided client.
func NewRedisStateRepo(rdb *redis.Client, prefix string) *RedisStateRepo {
    return &RedisStateRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisStateRepo) key(k string) string {
    if r.prefix == "" {
        return k
    }
    return r.prefix + ":" + k
}

// Load fetches the blob; a missing key maps to ErrNotFound.
func (r *RedisStateRepo) Load(ctx context.Context, key string) ([]byte, error) {
    b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// Save overwrites the blob without expiry.  Last write wins.
func (r *RedisStateRepo) Save(ctx context.Context, key string, payload []byte) error {
    return r.rdb.Set(ctx, r.key(key), payload, 0).Err()
}
