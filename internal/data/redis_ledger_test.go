package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/report-relay/internal/testutil"
)

func TestRedisLedger_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisLedgerStore(client, "test:ledger:")

	l, err := store.Open(ctx, "settlements-log")
	require.NoError(t, err)
	assert.Equal(t, "test:ledger:settlements-log", l.(*RedisLedger).Key())

	ok, err := l.Contains(ctx, "100")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Record(ctx, "200"))
	require.NoError(t, l.Record(ctx, "100"))
	require.NoError(t, l.Record(ctx, "100"))

	ok, err = l.Contains(ctx, "100")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200"}, ids)

	other, err := store.Open(ctx, "shipments-log")
	require.NoError(t, err)
	ok, err = other.Contains(ctx, "100")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisLedgerStore_DefaultPrefix(t *testing.T) {
	store := NewRedisLedgerStore(nil, "  ")
	l, err := store.Open(context.Background(), "daily-nas")
	require.NoError(t, err)
	assert.Equal(t, DefaultRedisLedgerPrefix+":daily-nas", l.(*RedisLedger).Key())
}
