package data

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "pressgate:page:"

// RedisPageCacheRepo stores rendered HTML pages in Redis. Only anonymous
// GET responses are ever cached, so entries carry no per-user state.
type RedisPageCacheRepo struct {
	client redis.UniversalClient
}

// NewRedisPageCacheRepo creates a new RedisPageCacheRepo with the given Redis client.
func NewRedisPageCacheRepo(client redis.UniversalClient) *RedisPageCacheRepo {
	return &RedisPageCacheRepo{client: client}
}

// PageKey derives the cache key for a request path and query. Query
// parameters are sorted so logically equal URLs share one entry.
func PageKey(path string, query url.Values) string {
	if len(query) == 0 {
		return pageKeyPrefix + path
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(pageKeyPrefix)
	b.WriteString(path)
	sep := "?"
	for _, k := range keys {
		for _, v := range query[k] {
			b.WriteString(sep)
			b.WriteString(url.QueryEscape(k))
			b.WriteString("=")
			b.WriteString(url.QueryEscape(v))
			sep = "&"
		}
	}
	return b.String()
}

// Set stores a rendered page with the given TTL.
func (r *RedisPageCacheRepo) Set(ctx context.Context, key string, page []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	return r.client.Set(ctx, key, page, ttl).Err()
}

// Get retrieves a rendered page by key. A miss returns nil bytes and nil error.
func (r *RedisPageCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return []byte(result), nil
}

// Purge drops every cached page. Used after mutations so stale listings
// never outlive a publish or delete.
func (r *RedisPageCacheRepo) Purge(ctx context.Context) (int64, error) {
	var purged int64
	iter := r.client.Scan(ctx, 0, pageKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return purged, fmt.Errorf("redis del: %w", err)
		}
		purged += n
	}
	if err := iter.Err(); err != nil {
		return purged, fmt.Errorf("redis scan: %w", err)
	}
	return purged, nil
}
