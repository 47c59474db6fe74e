package service

import (
	"context"
	"fmt"
	"time"

	"clinic-booking/pkg/jwt"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks issued token ids so they can be revoked before expiry.
// Owner keys combine role and id since patients and staff have separate id spaces.
type TokenStore interface {
	Save(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string) error
}

// TokenOwner builds the owner part of a token key
func TokenOwner(role string, id int64) string {
	return fmt.Sprintf("%s:%d", role, id)
}

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func tokenKey(tokenType jwt.TokenType, owner, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", tokenType, owner, tokenID)
}

func (s *redisTokenStore) Save(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(tokenType, owner, tokenID), "valid", ttl).Err(); err != nil {
		return fmt.Errorf("store %s token: %w", tokenType, err)
	}
	return nil
}

func (s *redisTokenStore) Exists(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(tokenType, owner, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check %s token: %w", tokenType, err)
	}
	return n > 0, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string) error {
	if err := s.client.Del(ctx, tokenKey(tokenType, owner, tokenID)).Err(); err != nil {
		return fmt.Errorf("delete %s token: %w", tokenType, err)
	}
	return nil
}
