package cache

import (
	"context"
	"errors"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/config"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user-sessions:"
	statsKey             = "stats:dashboard"
)

// Client is the subset of *redis.Client used by the adapters.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// RedisSessionStore keeps one key per issued access token. The key expires
// together with the token; logout deletes it early. A per-user set indexes
// the session ids so all of a user's tokens can be dropped at once.
type RedisSessionStore struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

var _ ports.SessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(client Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Sessions"),
	}
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err(); err != nil {
			return nil, err
		}
		index := userSessionKeyPrefix + userID
		if err := s.client.SAdd(ctx, index, sessionID).Err(); err != nil {
			return nil, err
		}
		// the newest token outlives every older one
		return nil, s.client.Expire(ctx, index, ttl).Err()
	})
	return err
}

func (s *RedisSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	})
	if err != nil {
		return false, err
	}
	return n.(int64) > 0, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
	})
	return err
}

func (s *RedisSessionStore) RevokeUser(ctx context.Context, userID string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		index := userSessionKeyPrefix + userID
		ids, err := s.client.SMembers(ctx, index).Result()
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			keys = append(keys, sessionKeyPrefix+id)
		}
		keys = append(keys, index)
		return nil, s.client.Del(ctx, keys...).Err()
	})
	return err
}

// RedisStatsCache stores the dashboard snapshot as JSON.
type RedisStatsCache struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

var _ ports.StatsCache = (*RedisStatsCache)(nil)

func NewRedisStatsCache(client Client) *RedisStatsCache {
	return &RedisStatsCache{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Cache"),
	}
}

func (c *RedisStatsCache) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	raw, err := c.cb.Execute(func() (interface{}, error) {
		val, err := c.client.Get(ctx, statsKey).Result()
		if errors.Is(err, redis.Nil) {
			// a miss is not a failure
			return "", nil
		}
		return val, err
	})
	if err != nil {
		return nil, err
	}
	if raw.(string) == "" {
		return nil, nil
	}

	var stats domain.DashboardStats
	if err := jsoniter.ConfigFastest.UnmarshalFromString(raw.(string), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *RedisStatsCache) SetStats(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error {
	body, err := jsoniter.ConfigFastest.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, statsKey, body, ttl).Err()
	})
	return err
}
