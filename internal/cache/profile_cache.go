package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fundchain/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const profilePrefix = "fundchain:profile:"

func profileKey(accountID string) string {
	return profilePrefix + accountID
}

// ProfileCache keeps JSON copies of user profiles in Redis. A nil client
// disables it: every read misses and writes are dropped.
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProfileCache(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

// Connect dials Redis and pings it once. An empty addr returns a nil client.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (c *ProfileCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *ProfileCache) GetProfile(ctx context.Context, accountID string) (models.UserProfile, bool) {
	var profile models.UserProfile
	if !c.enabled() {
		return profile, false
	}
	val, err := c.rdb.Get(ctx, profileKey(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return profile, false
	}
	if err != nil {
		logrus.WithError(err).WithField("account_id", accountID).Warn("profile cache read failed")
		return profile, false
	}
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		logrus.WithError(err).WithField("account_id", accountID).Warn("profile cache entry corrupt")
		return models.UserProfile{}, false
	}
	return profile, true
}

func (c *ProfileCache) SetProfile(ctx context.Context, profile models.UserProfile) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, profileKey(profile.AccountID), b, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("account_id", profile.AccountID).Warn("profile cache write failed")
	}
}

func (c *ProfileCache) Invalidate(ctx context.Context, accountIDs ...string) {
	if !c.enabled() || len(accountIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, profileKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).WithField("accounts", accountIDs).Warn("profile cache invalidation failed")
	}
}
