package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// TestPayloadKey returns the cache key for a published test's question payload.
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// AttemptAnswersKey returns the cache key for a user's saved answers during an attempt.
func (r *CacheKeyStruct) AttemptAnswersKey(testID string, userID int) string {
	return fmt.Sprintf("user:%d:test:%s:answers", userID, testID)
}

// AttemptStartKey returns the cache key for an attempt's start timestamp.
func (r *CacheKeyStruct) AttemptStartKey(testID string, userID int) string {
	return fmt.Sprintf("user:%d:test:%s:attempt_start", userID, testID)
}

// ResultLockKey returns the idempotency key guarding result persistence
// for one (test, user) pair.
func (r *CacheKeyStruct) ResultLockKey(testID string, userID int) string {
	return fmt.Sprintf("user:%d:test:%s:result_lock", userID, testID)
}

var CacheKey = NewCacheKeyStruct()
