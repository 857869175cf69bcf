package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/noteshq/notesctl/internal/apperrors"
	"github.com/noteshq/notesctl/internal/config"
	"github.com/noteshq/notesctl/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisAccessTokenKey = "access-token"
const redisRefreshTokenKey = "refresh-token"
const redisEventChannel = "session-events"

// LimitedRedisClient is the limited set of functionality expected from the redis client
// in this repository. This allows for easy mocking and swapping of the client. The
// universal redis client interface is way too big.
type LimitedRedisClient interface {
	// GET key
	Get(ctx context.Context, key string) *redis.StringCmd
	// SET key value
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	// DEL key [key ...]
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// PUBLISH channel message
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// eventSubscriber abstracts redis pub/sub so the mock client can deliver
// events fully in process.
type eventSubscriber interface {
	subscribeEvents(ctx context.Context, channel string) (events <-chan string, cancel func(), err error)
}

// RedisTokenRepository persists the token pair as two redis string keys and
// fans session events out over a pub/sub channel so every client pointed at
// the same redis observes logins and logouts.
type RedisTokenRepository struct {
	rdb       LimitedRedisClient
	subs      eventSubscriber
	keyPrefix string
}

func (r *RedisTokenRepository) key(name string) string {
	return r.keyPrefix + name
}

func (r *RedisTokenRepository) getToken(ctx context.Context, name string) (string, error) {
	value, err := r.rdb.Get(ctx, r.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return value, nil
}

func (r *RedisTokenRepository) setToken(ctx context.Context, name string, value string) error {
	err := r.rdb.Set(ctx, r.key(name), value, 0).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisTokenRepository) GetAccessToken(ctx context.Context) (string, error) {
	return r.getToken(ctx, redisAccessTokenKey)
}

func (r *RedisTokenRepository) GetRefreshToken(ctx context.Context) (string, error) {
	return r.getToken(ctx, redisRefreshTokenKey)
}

func (r *RedisTokenRepository) SetAccessToken(ctx context.Context, value string) error {
	return r.setToken(ctx, redisAccessTokenKey, value)
}

func (r *RedisTokenRepository) SetRefreshToken(ctx context.Context, value string) error {
	return r.setToken(ctx, redisRefreshTokenKey, value)
}

func (r *RedisTokenRepository) RemoveTokens(ctx context.Context) error {
	err := r.rdb.Del(ctx, r.key(redisAccessTokenKey), r.key(redisRefreshTokenKey)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisTokenRepository) NotifyTokens(ctx context.Context, event models.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.key(redisEventChannel), string(payload)).Err()
}

func (r *RedisTokenRepository) WatchTokens(ctx context.Context, handler func(models.SessionEvent)) (cancel func(), err error) {
	events, cancel, err := r.subs.subscribeEvents(ctx, r.key(redisEventChannel))
	if err != nil {
		return nil, err
	}
	go func() {
		for payload := range events {
			var event models.SessionEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				slog.Error("discarding malformed session event", "error", err)
				continue
			}
			handler(event)
		}
	}()
	return cancel, nil
}

type redisEventSubscriber struct {
	rdb *redis.Client
}

func (s redisEventSubscriber) subscribeEvents(ctx context.Context, channel string) (<-chan string, func(), error) {
	pubsub := s.rdb.Subscribe(ctx, channel)
	// an initial receive surfaces subscription errors before we hand out the channel
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			out <- msg.Payload
		}
	}()
	return out, func() { pubsub.Close() }, nil
}

type RedisTokenRepositoryOption func(*RedisTokenRepository) error

func WithRedisConfig(redisConfig config.RedisConfig) RedisTokenRepositoryOption {
	return func(r *RedisTokenRepository) error {
		r.keyPrefix = redisConfig.KeyPrefix
		if redisConfig.IsSentinel {
			rdb := redis.NewFailoverClient(&redis.FailoverOptions{
				MasterName:       redisConfig.MasterName,
				SentinelAddrs:    redisConfig.Addresses,
				Password:         string(redisConfig.Password),
				DB:               redisConfig.DBIndex,
				SentinelPassword: string(redisConfig.Password),
			})
			r.rdb = rdb
			r.subs = redisEventSubscriber{rdb}
			return nil
		}
		if len(redisConfig.Addresses) == 0 {
			return fmt.Errorf("at least one redis address is required")
		}
		rdb := redis.NewClient(&redis.Options{
			Password: string(redisConfig.Password),
			DB:       redisConfig.DBIndex,
			Addr:     redisConfig.Addresses[0],
		})
		r.rdb = rdb
		r.subs = redisEventSubscriber{rdb}
		return nil
	}
}

func NewRedisTokenRepository(options ...RedisTokenRepositoryOption) (*RedisTokenRepository, error) {
	repo := RedisTokenRepository{}
	for _, opt := range options {
		err := opt(&repo)
		if err != nil {
			return &RedisTokenRepository{}, err
		}
	}
	if repo.rdb == nil {
		return &RedisTokenRepository{}, fmt.Errorf("redis client is not initialized")
	}
	return &repo, nil
}
