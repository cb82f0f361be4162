// Package cache provides the string key/value cache used for query results,
// backed by Redis or by an in-process store.
package cache

import (
	"context"
	stderrors "errors"
	"time"
)

var ErrKeyNotFound = stderrors.New("key not found")

// Cache defines the operations the services need from a cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Close() error
}
