//go:build integration_test || all_tests

package kv

import (
	"testing"

	"github.com/stretchr/testify/require"

	pkgtesting "github.com/2beens/trainlog/pkg/testing"
)

func TestRedisStore_Live(t *testing.T) {
	ctx, rdb := pkgtesting.GetRedisClientAndCtx(t)

	keyPrefix := "trainlog-test::"
	store := NewRedisStore(rdb, keyPrefix)
	for _, key := range []string{"missing", "k1", "k2", "empty"} {
		require.NoError(t, rdb.Del(ctx, keyPrefix+key).Err())
	}

	checkStoreBasics(t, store)
}
