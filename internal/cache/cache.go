package cache

import (
	"context"
	"time"
)

// Cache is a string key-value store with per-entry expiry. The reply
// cache and the history cache share one keyspace and one TTL.
//
// Implementations must be safe for concurrent use. Callers treat every
// error as a miss: the cache is an optimization tier, never a source of
// truth.
type Cache interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ReplyKey builds the response-cache key for a user's normalized message.
func ReplyKey(userID, normalized string) string {
	return userID + ":" + normalized
}

// HistoryKey builds the history-cache key for a user.
func HistoryKey(userID string) string {
	return "chat_history:" + userID
}
