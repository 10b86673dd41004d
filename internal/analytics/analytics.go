// Package analytics exports per-client, per-path outcome counters to
// Redis so a fleet of simulated endpoints can be inspected in one
// place. Entirely optional: when no Redis address is configured the
// middleware is never installed and the core keeps no external state.
package analytics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Analytics records request outcomes in Redis.
type Analytics struct {
	redis *redis.Client
}

// New returns an Analytics over the given client.
func New(r *redis.Client) *Analytics {
	return &Analytics{redis: r}
}

// RecordRequest increments the request counter for client+path, tracks
// the last observed latency, and counts errors separately.
func (a *Analytics) RecordRequest(clientKey, path string, duration time.Duration, statusCode int) error {
	ctx := context.Background()

	reqKey := requestKey(clientKey, path)
	if err := a.redis.Incr(ctx, reqKey).Err(); err != nil {
		return err
	}

	latKey := latencyKey(clientKey, path)
	a.redis.Set(ctx, latKey, duration.Milliseconds(), time.Hour)

	if statusCode >= 400 {
		a.redis.Incr(ctx, errorKey(clientKey, path))
	}
	return nil
}

// FetchClientAnalytics returns request and error counts per path for
// one client key.
func (a *Analytics) FetchClientAnalytics(clientKey string) (map[string]map[string]int, error) {
	ctx := context.Background()
	result := make(map[string]map[string]int)

	prefix := requestKey(clientKey, "")
	keys, err := a.redis.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		path := strings.TrimPrefix(k, prefix)
		val, _ := a.redis.Get(ctx, k).Result()
		count, _ := strconv.Atoi(val)

		errVal, _ := a.redis.Get(ctx, errorKey(clientKey, path)).Result()
		errCount, _ := strconv.Atoi(errVal)

		result[path] = map[string]int{
			"requests": count,
			"errors":   errCount,
		}
	}
	return result, nil
}

func requestKey(clientKey, path string) string {
	return "mockendpoint:req:" + clientKey + ":" + path
}

func latencyKey(clientKey, path string) string {
	return "mockendpoint:lat:" + clientKey + ":" + path
}

func errorKey(clientKey, path string) string {
	return "mockendpoint:err:" + clientKey + ":" + path
}
