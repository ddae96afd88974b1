package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCandidates lists addresses tried in order when REDIS_ADDR is unset:
// the CI compose service, a CI sidecar, then the local test profile.
var redisCandidates = []string{"redis:6379", "localhost:6379", "localhost:56379"}

func pingRedis(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// findRedis returns the first reachable address.
func findRedis() (string, error) {
	candidates := redisCandidates
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}
	var errs []error
	for _, addr := range candidates {
		client, err := pingRedis(addr, 0)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		_ = client.Close()
		return addr, nil
	}
	return "", errors.Join(errs...)
}

// reserveRedisDB picks a logical DB so parallel packages do not flush each
// other. TEST_REDIS_DB wins; otherwise a lock key in DB 0 claims one of 1..15.
func reserveRedisDB(t TestingTB, addr string) int {
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
		t.Logf("invalid TEST_REDIS_DB=%q, auto-selecting", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = meta.Close() }()

	owner := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
	for i := 1; i <= 15; i++ {
		key := fmt.Sprintf("report-relay:testutil:db_lock:%d", i)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := meta.SetNX(ctx, key, owner, 30*time.Minute).Result()
		cancel()
		if err != nil || !ok {
			continue
		}
		t.Cleanup(func() { releaseRedisDB(t, addr, key) })
		return i
	}
	t.Logf("no free redis DB, falling back to DB=1")
	return 1
}

func releaseRedisDB(t TestingTB, addr, key string) {
	c := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = c.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Del(ctx, key).Err(); err != nil {
		t.Logf("warning: release redis db lock %s: %v", key, err)
	}
}

// SetupTestRedis returns a client on a flushed, reserved DB.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()
	addr, err := findRedis()
	if err != nil {
		unavailable(t, requireRedis(), "redis", err)
		return nil
	}

	db := reserveRedisDB(t, addr)
	client, err := pingRedis(addr, db)
	if err != nil {
		unavailable(t, requireRedis(), "redis", err)
		return nil
	}
	t.Logf("Using Redis DB=%d at %s", db, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client.FlushDB(ctx)
	return client
}
