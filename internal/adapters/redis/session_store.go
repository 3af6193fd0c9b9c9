// Package redis provides the session-scoped cache backed by Redis. Keys are
// namespaced per shopper session and expire with it, so vault-existence
// lookups are re-derived at session boundary.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

// SessionStoreConfig contains configuration for the Redis session store
type SessionStoreConfig struct {
	Addr     string
	Password string
	DB       int

	// Session TTL applied to every entry
	TTL time.Duration
}

type sessionStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewSessionStore creates a session store scoped to one shopper session.
func NewSessionStore(client *redis.Client, sessionID string, ttl time.Duration, logger *zap.Logger) ports.SessionStore {
	return &sessionStore{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
		logger:    logger,
	}
}

// NewRedisClient creates the underlying Redis client.
func NewRedisClient(config SessionStoreConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
}

func (s *sessionStore) key(key string) string {
	return fmt.Sprintf("session:%s:%s", s.sessionID, key)
}

func (s *sessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		s.logger.Warn("Session cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", false, err
	}
	return value, true, nil
}

func (s *sessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		s.logger.Warn("Session cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}
