package httpcache

import (
	"errors"

	"github.com/veristry/veristry/lib/common"
)

const (
	MemoryAdapterName string = "mem"
	RedisAdapterName  string = "redis"
)

func NewAdapter(cfg common.Config) (Adapter, error) {
	switch cfg.HTTPCacheAdapter {
	case MemoryAdapterName:
		return NewMemCacheAdapter(cfg.HTTPCachePoolSize), nil
	case RedisAdapterName:
		return NewRedisCacheAdapter(&RedisRingOptions{
			Addrs: cfg.HTTPCacheRedisAddrs,
		}), nil
	default:
		return nil, errors.New("adapter not found")
	}
}
