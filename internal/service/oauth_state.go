package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/prperemyshlev/wms-server/pkg/database"
)

const oauthStatePrefix = "oauth2:state:"

// StateStore keeps OAuth2 state values between the authorize redirect and the callback
type StateStore interface {
	Issue(ctx context.Context, provider string) (string, error)
	Consume(ctx context.Context, state, provider string) error
}

// redisStateStore keeps each state as a Redis key that expires after ttl and is deleted on first use
type redisStateStore struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewRedisStateStore creates a Redis-backed state store
func NewRedisStateStore(redis *database.Redis, ttl time.Duration) StateStore {
	return &redisStateStore{
		redis: redis,
		ttl:   ttl,
	}
}

// Issue generates a random state bound to provider
func (s *redisStateStore) Issue(ctx context.Context, provider string) (string, error) {
	state := oauth2.GenerateVerifier()

	if err := s.redis.Client.Set(ctx, oauthStatePrefix+state, provider, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth2 state: %w", err)
	}

	return state, nil
}

// Consume accepts a state exactly once, and only for the provider it was issued for
func (s *redisStateStore) Consume(ctx context.Context, state, provider string) error {
	if state == "" {
		return ErrInvalidOAuthState
	}

	issuedFor, err := s.redis.Take(ctx, oauthStatePrefix+state)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return ErrInvalidOAuthState
		}
		return fmt.Errorf("failed to read oauth2 state: %w", err)
	}

	if issuedFor != provider {
		return fmt.Errorf("state issued for %s: %w", issuedFor, ErrInvalidOAuthState)
	}

	return nil
}
