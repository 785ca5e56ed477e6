package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "intake:session:"

// RedisStore keeps sessions in Redis so several API instances can serve the
// same call. Every save refreshes the key's TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore creates a session store backed by Redis.
func NewRedisStore(rdb *redis.Client, idleTTL time.Duration) *RedisStore {
	if rdb == nil {
		panic("intake: redis client required")
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &RedisStore{rdb: rdb, ttl: idleTTL, now: time.Now}
}

func sessionKey(callID string) string {
	return sessionKeyPrefix + callID
}

func (r *RedisStore) GetOrCreate(ctx context.Context, in Input) (*Session, bool, error) {
	if in.CallID == "" {
		return nil, false, ErrCallIDRequired
	}
	s, err := r.Get(ctx, in.CallID)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, false, err
	}
	return NewSession(in, r.now()), true, nil
}

func (r *RedisStore) Get(ctx context.Context, callID string) (*Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("intake: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("intake: unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.CallID == "" {
		return ErrCallIDRequired
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("intake: marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.CallID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("intake: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, callID string) error {
	if err := r.rdb.Del(ctx, sessionKey(callID)).Err(); err != nil {
		return fmt.Errorf("intake: redis del: %w", err)
	}
	return nil
}
