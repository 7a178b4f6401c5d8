package base

import (
	"github.com/go-errors/errors"
)

var ErrCacheMiss = errors.New("Cache miss")

type Cashe interface {
	Get(key string) (string, error)
	Set(key, value string) error
	// Incr adds one to the counter stored at key and returns the new value.
	// Missing counters start at zero.
	Incr(key string) (int64, error)
}

// NewCashe picks memcache when servers are listed, then redis when an address is set,
// and falls back to an in-process cache.
func NewCashe(memcacheServers []string, redisAddress, redisPassword string) Cashe {
	if len(memcacheServers) > 0 {
		c, _ := NewMemcache(memcacheServers)
		return c
	}
	if len(redisAddress) > 0 {
		c, _ := NewRedis(redisAddress, redisPassword)
		return c
	}
	return NewMemory()
}
