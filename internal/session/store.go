// Package session owns the ephemeral per-student attempt state and the
// access-mediation predicate evaluated against it. The attempt is an
// explicit value held by a store collaborator and passed by student id —
// no ambient globals.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/notsocj/SmartExam/internal/config"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/redis/go-redis/v9"
)

// Store holds at most one active Attempt per student. Get returns
// (nil, nil) when no attempt exists; Clear is a no-op when none exists.
type Store interface {
	Get(ctx context.Context, userID int) (*model.Attempt, error)
	Save(ctx context.Context, userID int, att *model.Attempt) error
	Clear(ctx context.Context, userID int) error
}

// RedisStore keeps attempts as JSON values in Redis. A TTL backstops
// attempts whose owner disappeared without submit/abandon/logout.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore with the given backstop TTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, userID int) (*model.Attempt, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.StudentAttemptKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	var att model.Attempt
	if err := json.Unmarshal(data, &att); err != nil {
		// A corrupt attempt record is unrecoverable; treat it as absent so
		// the student is not locked out of every route.
		_ = s.rdb.Del(ctx, config.CacheKey.StudentAttemptKey(userID)).Err()
		return nil, nil
	}
	return &att, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int, att *model.Attempt) error {
	data, err := json.Marshal(att)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.StudentAttemptKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID int) error {
	if err := s.rdb.Del(ctx, config.CacheKey.StudentAttemptKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear attempt: %w", err)
	}
	return nil
}
