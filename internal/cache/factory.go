package cache

import (
	"github.com/antonio-alexander/go-employee-query/internal"

	stashmemory "github.com/antonio-alexander/go-stash/memory"
	stashredis "github.com/antonio-alexander/go-stash/redis"
)

const (
	TypeMemory      string = "memory"
	TypeRedis       string = "redis"
	TypeStashMemory string = "stash-memory"
	TypeStashRedis  string = "stash-redis"
)

// NewFromType creates the cache named by cacheType (CACHE_TYPE), it
// returns nil for an empty or unknown type (no cache)
func NewFromType(cacheType string, envs map[string]string, parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	switch cacheType {
	default:
		return nil
	case TypeMemory:
		return NewMemory(parameters...)
	case TypeRedis:
		return NewRedis(parameters...)
	case TypeStashMemory:
		stash := stashmemory.New()
		_ = stash.Configure(envs)
		return NewStash(append(parameters, stash)...)
	case TypeStashRedis:
		stash := stashredis.New()
		_ = stash.Configure(envs)
		return NewStash(append(parameters, stash)...)
	}
}
