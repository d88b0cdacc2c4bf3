package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"weatherdash.app/config"
	"weatherdash.app/errors"
)

// NewStore creates the Store selected by the cache configuration
func NewStore(cfg *config.CacheConfig, db *gorm.DB) (Store, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "database":
		if db == nil {
			return nil, errors.NewConfigurationError("database store requires a database connection", nil)
		}
		return NewGormStore(db), nil
	case "redis":
		return NewRedisStore(&RedisStoreConfig{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
