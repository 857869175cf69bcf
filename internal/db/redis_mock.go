package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements LimitedRedisClient and eventSubscriber fully in
// memory. Only suitable for testing and local development. Contexts are
// completely ignored.
type MockRedisClient struct {
	lock        sync.Mutex
	store       map[string]string
	subscribers map[string][]chan string
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{store: map[string]string{}, subscribers: map[string][]chan string{}}
}

func (m *MockRedisClient) Get(_ context.Context, key string) *redis.StringCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.StringCmd{}
	value, found := m.store[key]
	if !found {
		res.SetErr(redis.Nil)
		return &res
	}
	res.SetVal(value)
	return &res
}

func (m *MockRedisClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.StatusCmd{}
	strValue, ok := value.(string)
	if !ok {
		res.SetErr(fmt.Errorf("the mock redis client only supports string values"))
		return &res
	}
	m.store[key] = strValue
	res.SetVal("OK")
	return &res
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	for _, key := range keys {
		delete(m.store, key)
	}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	m.lock.Lock()
	subs := append([]chan string{}, m.subscribers[channel]...)
	m.lock.Unlock()
	res := redis.IntCmd{}
	payload, ok := message.(string)
	if !ok {
		res.SetErr(fmt.Errorf("the mock redis client only supports string messages"))
		return &res
	}
	for _, sub := range subs {
		sub <- payload
	}
	res.SetVal(int64(len(subs)))
	return &res
}

func (m *MockRedisClient) subscribeEvents(_ context.Context, channel string) (<-chan string, func(), error) {
	events := make(chan string, 8)
	m.lock.Lock()
	m.subscribers[channel] = append(m.subscribers[channel], events)
	m.lock.Unlock()
	cancel := func() {
		m.lock.Lock()
		defer m.lock.Unlock()
		subs := m.subscribers[channel]
		for i, sub := range subs {
			if sub == events {
				m.subscribers[channel] = append(subs[:i], subs[i+1:]...)
				close(events)
				break
			}
		}
	}
	return events, cancel, nil
}

// WithMockRedisClient swaps in the in-memory client, matching the
// "redis-mock" storage type.
func WithMockRedisClient(keyPrefix string) RedisTokenRepositoryOption {
	return func(r *RedisTokenRepository) error {
		mock := NewMockRedisClient()
		r.rdb = mock
		r.subs = mock
		r.keyPrefix = keyPrefix
		return nil
	}
}
