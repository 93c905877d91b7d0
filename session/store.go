package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRevoked is returned by [Store.Check] for a denylisted token or a token
// issued at or before the user's revocation watermark.
var ErrRevoked = errors.New("session revoked")

// ErrRedisUnavailable wraps every Redis transport failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// The watermark only moves forward so a late, older revocation cannot
// resurrect tokens revoked by a newer one.
const raiseWatermarkScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local next = tonumber(ARGV[1])
if next > current then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 0
`

var raiseWatermarkLua = redis.NewScript(raiseWatermarkScript)

// Store is a Redis-backed revocation list.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a revocation [Store]. prefix sets the Redis key namespace.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "gs"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) tokenKey(tokenID string) string {
	return s.prefix + ":rv:" + tokenID
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":nb:" + userID
}

// Revoke denylists tokenID for ttl, which should be the token's remaining
// lifetime. A non-positive ttl is a no-op: the token has already expired.
//
//	Performance: 1 Redis SET.
func (s *Store) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokeUser revokes every token for userID issued at or before at, to the
// millisecond. The watermark is kept for ttl, which should be at least the
// token lifetime.
//
//	Performance: 1 Redis EVALSHA.
func (s *Store) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	if ttl <= 0 {
		return errors.New("revocation ttl must be > 0")
	}
	err := raiseWatermarkLua.Run(ctx, s.redis,
		[]string{s.userKey(userID)},
		strconv.FormatInt(at.UnixMilli(), 10),
		strconv.FormatInt(ttl.Milliseconds(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Check returns [ErrRevoked] if the token was revoked, nil if it was not, and
// an error wrapping [ErrRedisUnavailable] if Redis could not be consulted.
//
//	Performance: 1 pipelined round trip (2 GETs).
func (s *Store) Check(ctx context.Context, tokenID, userID string, issuedAt time.Time) error {
	var tokenCmd, userCmd *redis.StringCmd
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if tokenID != "" {
			tokenCmd = pipe.Get(ctx, s.tokenKey(tokenID))
		}
		userCmd = pipe.Get(ctx, s.userKey(userID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if tokenCmd != nil {
		if err := tokenCmd.Err(); err == nil {
			return ErrRevoked
		} else if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	raw, err := userCmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	watermark, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// An unreadable watermark cannot prove the token is still good.
		return ErrRevoked
	}
	if issuedAt.UnixMilli() <= watermark {
		return ErrRevoked
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
