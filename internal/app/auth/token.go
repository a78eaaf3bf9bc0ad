package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TokenVerifier checks device tokens presented as bearer credentials.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// StaticVerifier accepts the fixed token list from configuration.
type StaticVerifier struct {
	tokens map[string]struct{}
}

// NewStaticVerifier builds a verifier over a fixed token list.
func NewStaticVerifier(tokens []string) *StaticVerifier {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return &StaticVerifier{tokens: set}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (bool, error) {
	_, ok := v.tokens[token]
	return ok, nil
}

// tokenSetKey is the redis set holding currently issued device tokens.
const tokenSetKey = "lyre:device_tokens"

// RedisVerifier checks tokens against a shared redis set, so tokens can be
// issued and revoked without restarting the server. Falls back to the static
// list when redis is unavailable.
type RedisVerifier struct {
	rdb      *redis.Client
	fallback *StaticVerifier
}

// NewRedisVerifier creates a redis-backed verifier with a static fallback.
func NewRedisVerifier(addr, password string, fallback *StaticVerifier) *RedisVerifier {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisVerifier{rdb: rdb, fallback: fallback}
}

func (v *RedisVerifier) Verify(ctx context.Context, token string) (bool, error) {
	ok, err := v.rdb.SIsMember(ctx, tokenSetKey, token).Result()
	if err != nil {
		if v.fallback != nil {
			return v.fallback.Verify(ctx, token)
		}
		return false, fmt.Errorf("redis token lookup: %w", err)
	}
	if !ok && v.fallback != nil {
		return v.fallback.Verify(ctx, token)
	}
	return ok, nil
}

// Issue registers a new device token in redis.
func (v *RedisVerifier) Issue(ctx context.Context, token string) error {
	if err := v.rdb.SAdd(ctx, tokenSetKey, token).Err(); err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return nil
}

// Revoke removes a device token from redis.
func (v *RedisVerifier) Revoke(ctx context.Context, token string) error {
	if err := v.rdb.SRem(ctx, tokenSetKey, token).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
