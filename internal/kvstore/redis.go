package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements Store and Counter on top of Redis. Keys are
// namespaced with prefix so several environments can share an instance.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "wizmedik"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Dial connects and pings Redis.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "kvstore.Dial"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

func (r *RedisStore) key(k string) string {
	return r.prefix + ":" + k
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore.RedisStore.Get: %w", err)
	}
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("kvstore.RedisStore.Set: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("kvstore.RedisStore.Remove: %w", err)
	}
	return nil
}

func (r *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = int64(time.Minute / time.Millisecond)
	}

	n, err := fixedWindowScript.Run(ctx, r.client, []string{r.key(key)}, ms).Int64()
	if err != nil {
		return 0, fmt.Errorf("kvstore.RedisStore.Incr: %w", err)
	}
	return n, nil
}

// Ping backs the /ready route.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
