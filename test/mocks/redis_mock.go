package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for the Redis commands used by
// the session store, the stats cache and the readiness check. Expired keys
// behave as absent.
type MockRedisClient struct {
	mu      sync.RWMutex
	entries map[string]redisEntry

	SetError    error
	GetError    error
	DelError    error
	ExistsError error
	PingError   error

	Calls map[string]int
}

type redisEntry struct {
	value    string
	members  map[string]struct{}
	deadline time.Time
}

func (e redisEntry) live(now time.Time) bool {
	return e.deadline.IsZero() || now.Before(e.deadline)
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		entries: make(map[string]redisEntry),
		Calls:   make(map[string]int),
	}
}

func (m *MockRedisClient) lookup(key string) (redisEntry, bool) {
	e, ok := m.entries[key]
	if !ok || !e.live(time.Now()) {
		return redisEntry{}, false
	}
	return e, true
}

func deadlineAfter(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["set"]++

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	var stored string
	switch v := value.(type) {
	case string:
		stored = v
	case []byte:
		stored = string(v)
	default:
		cmd.SetErr(fmt.Errorf("mock redis: unsupported value type %T", value))
		return cmd
	}

	m.entries[key] = redisEntry{value: stored, deadline: deadlineAfter(expiration)}
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["get"]++

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}
	e, ok := m.lookup(key)
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(e.value)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["del"]++

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}

	var deleted int64
	for _, key := range keys {
		if _, ok := m.lookup(key); ok {
			deleted++
		}
		delete(m.entries, key)
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["exists"]++

	cmd := redis.NewIntCmd(ctx)
	if m.ExistsError != nil {
		cmd.SetErr(m.ExistsError)
		return cmd
	}

	var count int64
	for _, key := range keys {
		if _, ok := m.lookup(key); ok {
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

func (m *MockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["expire"]++

	cmd := redis.NewBoolCmd(ctx)
	e, ok := m.lookup(key)
	if !ok {
		cmd.SetVal(false)
		return cmd
	}
	e.deadline = deadlineAfter(expiration)
	m.entries[key] = e
	cmd.SetVal(true)
	return cmd
}

func (m *MockRedisClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["sadd"]++

	cmd := redis.NewIntCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}
	e, ok := m.lookup(key)
	if !ok || e.members == nil {
		e = redisEntry{members: make(map[string]struct{}), deadline: e.deadline}
	}
	var added int64
	for _, member := range members {
		s := fmt.Sprint(member)
		if _, ok := e.members[s]; !ok {
			e.members[s] = struct{}{}
			added++
		}
	}
	m.entries[key] = e
	cmd.SetVal(added)
	return cmd
}

func (m *MockRedisClient) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["smembers"]++

	cmd := redis.NewStringSliceCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}
	e, _ := m.lookup(key)
	out := make([]string, 0, len(e.members))
	for member := range e.members {
		out = append(out, member)
	}
	cmd.SetVal(out)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// SetKey stores a raw value for test setup.
func (m *MockRedisClient) SetKey(key, value string, expiration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = redisEntry{value: value, deadline: deadlineAfter(expiration)}
}

// TTL returns the remaining lifetime of a key, or 0 if it has none.
func (m *MockRedisClient) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.lookup(key)
	if !ok || e.deadline.IsZero() {
		return 0
	}
	return time.Until(e.deadline)
}

func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lookup(key)
	return ok
}
