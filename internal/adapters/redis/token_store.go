package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a one-time token is missing, expired, or
// already redeemed.
var ErrTokenNotFound = errors.New("one-time token not found")

// OneTimeTokenStore issues and redeems single-use login tokens backed by
// Redis. Redeem uses GETDEL so a token can only ever be consumed once, even
// under concurrent redemption attempts.
type OneTimeTokenStore struct {
	client redis.UniversalClient
	prefix string
}

// NewOneTimeTokenStore creates a new OneTimeTokenStore.
func NewOneTimeTokenStore(client redis.UniversalClient) *OneTimeTokenStore {
	return &OneTimeTokenStore{
		client: client,
		prefix: "otp:",
	}
}

// Issue mints a random token mapping to the user ID, valid for ttl.
func (s *OneTimeTokenStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	if err := s.client.Set(ctx, s.prefix+token, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Redeem consumes the token atomically and returns the user ID it was issued
// for.
func (s *OneTimeTokenStore) Redeem(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenNotFound
	}

	userID, err := s.client.GetDel(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("redeem token: %w", err)
	}
	return userID, nil
}
