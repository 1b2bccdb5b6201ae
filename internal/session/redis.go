package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

// RedisStore keeps sessions in Redis as JSON with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisStore creates a Redis-backed store from the redis config section
func NewRedisStore(cfg *config.Config, logger logging.Logger) *RedisStore {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Invalid Redis URL, falling back to localhost", map[string]interface{}{
			"error": err.Error(),
		})
		opts = &redis.Options{Addr: "localhost:6379"}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisStore{
		client: redis.NewClient(opts),
		ttl:    cfg.Session.TTL,
		logger: logger,
	}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &state, nil
}

func (r *RedisStore) Save(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(state.ID), raw, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session", map[string]interface{}{
			"session_id": state.ID,
			"error":      err.Error(),
		})
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// IsHealthy checks if Redis is connected and healthy
func (r *RedisStore) IsHealthy(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func sessionKey(id string) string {
	return fmt.Sprintf("jobdesk:session:%s", id)
}
