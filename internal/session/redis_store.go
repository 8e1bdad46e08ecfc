package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisCartStore keeps each cart as a JSON value under "cart:<session id>".
// Every save pushes the expiry forward by ttl.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (model.Cart, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	raw, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, nil
	}
	if err != nil {
		logger.Error("Failed to load cart from redis", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}

	cart := model.Cart{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		// a corrupt cart is dropped rather than blocking the shopper
		logger.Warn("Discarding unreadable cart", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return model.Cart{}, nil
	}
	return cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, sessionID string, cart model.Cart) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if len(cart) == 0 {
		return s.Delete(ctx, sessionID)
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), raw, s.ttl).Err(); err != nil {
		logger.Error("Failed to save cart to redis", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}
	return nil
}

func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	return s.client.Del(ctx, cartKey(sessionID)).Err()
}
