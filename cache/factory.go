package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/photo-share/config"
)

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "memory", "":
		log.Println("[Cache] Using in-process memory cache")
		return NewMemory(DefaultMemoryConfig())
	case "redis":
		log.Printf("[Cache] Connecting to redis at %s", cfg.CacheRedisAddr)
		return NewRedisCache(RedisConfig{
			Address:      cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
