package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisRevocationList) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return mr, NewRedisRevocationList(rdb)
}

func TestRedisRevocationList_RevokeAndCheck(t *testing.T) {
	mr, list := setupRedis(t)
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", 7, time.Now().Add(time.Hour)))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	val, err := mr.Get(revokedKeyPrefix + "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "7", val)

	ttl := mr.TTL(revokedKeyPrefix + "jti-1")
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl should track token expiry, got %s", ttl)
}

func TestRedisRevocationList_EntryExpiresWithToken(t *testing.T) {
	mr, list := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-2", 1, time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	revoked, err := list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationList_SkipsExpiredTokens(t *testing.T) {
	mr, list := setupRedis(t)

	require.NoError(t, list.Revoke(context.Background(), "jti-3", 1, time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(revokedKeyPrefix+"jti-3"))
}

func TestRedisRevocationList_ConnectionError(t *testing.T) {
	mr, list := setupRedis(t)
	mr.Close()

	_, err := list.IsRevoked(context.Background(), "jti-4")
	assert.Error(t, err)
}
