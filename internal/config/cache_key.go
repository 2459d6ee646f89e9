package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentLoginKey returns the cache key for a student's login session.
func (r *CacheKeyStruct) StudentLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// StudentAttemptKey returns the cache key holding a student's active test attempt.
// One key per student — the guard is a singleton per authenticated session.
func (r *CacheKeyStruct) StudentAttemptKey(userID int) string {
	return fmt.Sprintf("student:%d:attempt", userID)
}

// TestProctorChannel returns the Redis Pub/Sub channel for a test's live
// proctor feed.
func (r *CacheKeyStruct) TestProctorChannel(testID int) string {
	return fmt.Sprintf("test:%d:proctor", testID)
}

var CacheKey = NewCacheKeyStruct()
