package kv

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "kv: redis get %s", key)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "kv: redis set %s", key)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "kv: redis del %s", key)
	}
	return nil
}

func (r *Redis) Scan(ctx context.Context, prefix string) ([]Pair, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "kv: redis scan %s", prefix)
	}
	pairs := []Pair{}
	if len(keys) == 0 {
		return pairs, nil
	}
	keys = uniqueSorted(keys)

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "kv: redis mget %s", prefix)
	}
	for i, raw := range values {
		// key removed between SCAN and MGET
		s, ok := raw.(string)
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Key: keys[i], Value: []byte(s)})
	}
	return pairs, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// uniqueSorted sorts keys and drops repeats; SCAN may return a key more than once.
func uniqueSorted(keys []string) []string {
	sort.Strings(keys)
	return slices.Compact(keys)
}

func escapeGlob(value string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`).Replace(value)
}
