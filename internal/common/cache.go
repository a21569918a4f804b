package common

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is an in-process TTL cache shared by the services.
type Cache struct {
	c *cache.Cache
}

func NewCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{c: cache.New(defaultTTL, cleanupInterval)}
}

// Set stores value under key, for ttl[0] when given and the default TTL otherwise.
func (c *Cache) Set(key string, value any, ttl ...time.Duration) {
	d := cache.DefaultExpiration
	if len(ttl) > 0 {
		d = ttl[0]
	}
	c.c.Set(key, value, d)
}

func (c *Cache) Get(key string) (any, bool) {
	return c.c.Get(key)
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. Errors from load are returned and never cached.
func (c *Cache) GetOrLoad(key string, ttl time.Duration, load func() (any, error)) (any, error) {
	if v, ok := c.c.Get(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	c.c.Set(key, v, ttl)
	return v, nil
}

func (c *Cache) Delete(key string) {
	c.c.Delete(key)
}

func (c *Cache) Flush() {
	c.c.Flush()
}

func CacheKeyUserByID(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}
