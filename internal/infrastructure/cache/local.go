package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache keeps entries in process memory. It is used when no Redis
// address is configured.
type LocalCache struct {
	store *gocache.Cache
}

func NewLocalCache(defaultExpiration, cleanupInterval time.Duration) *LocalCache {
	return &LocalCache{store: gocache.New(defaultExpiration, cleanupInterval)}
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return fmt.Sprint(s), nil
	}
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.store.Set(key, value, expiration)
	return nil
}

func (c *LocalCache) Close() error {
	c.store.Flush()
	return nil
}
