package data

import (
	"context"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/report-relay/internal/core"
	apperrors "github.com/target/report-relay/internal/errors"
)

// DefaultRedisLedgerPrefix namespaces ledger set keys.
const DefaultRedisLedgerPrefix = "report-relay:ledger"

var (
	_ core.DedupLedger = (*RedisLedger)(nil)
	_ core.LedgerStore = (*RedisLedgerStore)(nil)
)

// RedisLedger keeps delivered job ids in a Redis set.
type RedisLedger struct {
	client redis.UniversalClient
	key    string
}

// Key returns the set key backing the ledger.
func (l *RedisLedger) Key() string { return l.key }

// Contains reports whether jobID is a member of the set.
func (l *RedisLedger) Contains(ctx context.Context, jobID string) (bool, error) {
	id, err := validateJobID(jobID)
	if err != nil {
		return false, apperrors.LedgerError(err, "contains")
	}
	ok, err := l.client.SIsMember(ctx, l.key, id).Result()
	if err != nil {
		return false, apperrors.LedgerError(err, "sismember "+l.key)
	}
	return ok, nil
}

// Record adds jobID to the set. SADD of an existing member is a no-op.
func (l *RedisLedger) Record(ctx context.Context, jobID string) error {
	id, err := validateJobID(jobID)
	if err != nil {
		return apperrors.LedgerError(err, "record")
	}
	if err := l.client.SAdd(ctx, l.key, id).Err(); err != nil {
		return apperrors.LedgerError(err, "sadd "+l.key)
	}
	return nil
}

// List returns the members sorted, since Redis sets are unordered.
func (l *RedisLedger) List(ctx context.Context) ([]string, error) {
	ids, err := l.client.SMembers(ctx, l.key).Result()
	if err != nil {
		return nil, apperrors.LedgerError(err, "smembers "+l.key)
	}
	slices.Sort(ids)
	return ids, nil
}

// RedisLedgerStore opens Redis-backed ledgers keyed <prefix>:<name>.
type RedisLedgerStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLedgerStore creates a store. An empty prefix uses DefaultRedisLedgerPrefix.
func NewRedisLedgerStore(client redis.UniversalClient, prefix string) *RedisLedgerStore {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultRedisLedgerPrefix
	}
	return &RedisLedgerStore{client: client, prefix: prefix}
}

// Open returns the ledger for name. No round trip is made until first use.
func (s *RedisLedgerStore) Open(_ context.Context, name string) (core.DedupLedger, error) {
	name, err := validateLedgerName(name)
	if err != nil {
		return nil, apperrors.LedgerError(err, "open ledger")
	}
	return &RedisLedger{client: s.client, key: s.prefix + ":" + name}, nil
}
