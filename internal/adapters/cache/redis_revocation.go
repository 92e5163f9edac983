package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:session:"

// RedisRevocationList keeps revoked session token IDs in Redis until the token would expire
type RedisRevocationList struct {
	rdb *redis.Client
}

// NewRedisRevocationList creates a revocation list backed by rdb
func NewRedisRevocationList(rdb *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{rdb: rdb}
}

func revokedKey(tokenID string) string {
	return revokedKeyPrefix + tokenID
}

// Revoke stores tokenID until expiresAt. Already expired tokens are not stored.
func (l *RedisRevocationList) Revoke(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := l.rdb.Set(ctx, revokedKey(tokenID), strconv.FormatUint(uint64(userID), 10), ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked
func (l *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return n > 0, nil
}
