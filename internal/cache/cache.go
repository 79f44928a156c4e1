package cache

import (
	"context"
	"time"
)

// Cache is the read-through store in front of Mongo session documents.
// Implementations must treat undecodable entries as misses, never as errors.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
