package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Views is a short-lived Redis cache of view counts per URI, sitting in front
// of the stats service. Every method is best-effort: a Redis failure is
// returned to the caller, who degrades to the stats service or to zero views.
type Views struct {
	rdb *redis.Client
	ttl time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewViews(cfg Config) *Views {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Views{rdb: rdb, ttl: cfg.TTL}
}

// Ping reports whether the Redis backend is reachable.
func (v *Views) Ping(ctx context.Context) error {
	return v.rdb.Ping(ctx).Err()
}

func (v *Views) Close() error {
	return v.rdb.Close()
}

// Get returns the cached counts for the uris it knows about; uris absent from
// the result were cache misses.
func (v *Views) Get(ctx context.Context, uris []string) (map[string]int, error) {
	if len(uris) == 0 {
		return map[string]int{}, nil
	}

	keys := make([]string, 0, len(uris))
	for _, uri := range uris {
		keys = append(keys, key(uri))
	}

	vals, err := v.rdb.MGet(ctx, keys...).Result()

	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(uris))

	for i, raw := range vals {
		s, ok := raw.(string)
		if !ok {
			continue
		}

		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			continue
		}

		out[uris[i]] = n
	}

	return out, nil
}

func (v *Views) Set(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}

	pipe := v.rdb.Pipeline()

	for uri, n := range counts {
		pipe.Set(ctx, key(uri), strconv.Itoa(n), v.ttl)
	}

	_, err := pipe.Exec(ctx)

	return err
}

func key(uri string) string {
	return "views:" + uri
}
