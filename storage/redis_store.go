package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	apperrors "weatherdash.app/errors"
)

// RedisStore persists entries in Redis. Values carry no TTL: staleness
// is a read-time judgment made by the cache layer, not an eviction
// policy.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
}

type RedisStoreConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisStore(config *RedisStoreConfig) (*RedisStore, error) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, apperrors.NewStorageError("connect to redis", err)
	}

	slog.Info("redis store connected", "addr", config.Addr)

	return &RedisStore{
		client: client,
		ctx:    ctx,
	}, nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	value, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, apperrors.NewStorageError("redis get", err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	if err := s.client.Set(s.ctx, key, value, 0).Err(); err != nil {
		return apperrors.NewStorageError("redis set", err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	if err := s.client.Del(s.ctx, key).Err(); err != nil {
		return apperrors.NewStorageError("redis delete", err)
	}
	return nil
}
