package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"weatherdash.app/config"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	t.Run("GetMissingKey", func(t *testing.T) {
		value, found, err := store.Get("missing")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set("weather-last-query", "Nairobi"))

		value, found, err := store.Get("weather-last-query")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Nairobi", value)
	})

	t.Run("SetReplaces", func(t *testing.T) {
		require.NoError(t, store.Set("weather-last-query", "Berlin"))

		value, found, err := store.Get("weather-last-query")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Berlin", value)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set("to-delete", "x"))
		require.NoError(t, store.Delete("to-delete"))

		_, found, err := store.Get("to-delete")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func TestGormStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&KVRecord{}))

	store := NewGormStore(db)

	t.Run("GetMissingKey", func(t *testing.T) {
		value, found, err := store.Get("missing")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set("weather-cache-berlin-metric", `{"fetchedAt":1}`))

		value, found, err := store.Get("weather-cache-berlin-metric")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"fetchedAt":1}`, value)
	})

	t.Run("UpsertReplacesValue", func(t *testing.T) {
		require.NoError(t, store.Set("weather-cache-berlin-metric", `{"fetchedAt":2}`))

		value, found, err := store.Get("weather-cache-berlin-metric")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"fetchedAt":2}`, value)

		var count int64
		require.NoError(t, db.Model(&KVRecord{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		reopened, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)

		value, found, err := NewGormStore(reopened).Get("weather-cache-berlin-metric")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"fetchedAt":2}`, value)
	})
}

func TestRedisStore(t *testing.T) {
	server := miniredis.RunT(t)

	store, err := NewRedisStore(&RedisStoreConfig{
		Addr:         server.Addr(),
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)

	t.Run("GetMissingKey", func(t *testing.T) {
		value, found, err := store.Get("missing")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set("weather-recent-searches", `["Paris"]`))

		value, found, err := store.Get("weather-recent-searches")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `["Paris"]`, value)
	})

	t.Run("NoExpiry", func(t *testing.T) {
		require.NoError(t, store.Set("weather-units", "metric"))
		server.FastForward(24 * time.Hour)

		_, found, err := store.Get("weather-units")
		assert.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set("to-delete", "x"))
		require.NoError(t, store.Delete("to-delete"))

		_, found, err := store.Get("to-delete")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func TestNewStoreFactory(t *testing.T) {
	t.Run("MemoryType", func(t *testing.T) {
		store, err := NewStore(&config.CacheConfig{Type: "memory"}, nil)
		assert.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("DatabaseTypeWithoutConnection", func(t *testing.T) {
		_, err := NewStore(&config.CacheConfig{Type: "database"}, nil)
		assert.Error(t, err)
	})

	t.Run("NilConfig", func(t *testing.T) {
		_, err := NewStore(nil, nil)
		assert.Error(t, err)
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		_, err := NewStore(&config.CacheConfig{Type: "memcached"}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported cache type")
	})
}
