package cache

import (
	"log/slog"
	"time"

	"weatherdash.app/metrics"
	"weatherdash.app/storage"
)

// InstrumentedStore decorates a storage.Store with prometheus hit/miss
// and latency metrics
type InstrumentedStore struct {
	store   storage.Store
	metrics *metrics.CacheMetrics
}

func NewInstrumentedStore(store storage.Store, storeType string) *InstrumentedStore {
	return &InstrumentedStore{
		store:   store,
		metrics: metrics.NewCacheMetrics(storeType),
	}
}

func (s *InstrumentedStore) measureLatency(operation string, fn func()) {
	start := time.Now()
	fn()
	latency := time.Since(start).Seconds()
	s.metrics.RecordLatency(operation, latency)
}

func (s *InstrumentedStore) Get(key string) (string, bool, error) {
	var value string
	var found bool
	var err error

	s.measureLatency("get", func() {
		value, found, err = s.store.Get(key)
	})

	if found {
		s.metrics.RecordHit()
		slog.Debug("cache hit", "key", key)
	} else {
		s.metrics.RecordMiss()
		slog.Debug("cache miss", "key", key)
	}

	return value, found, err
}

func (s *InstrumentedStore) Set(key, value string) error {
	var err error
	s.measureLatency("set", func() {
		err = s.store.Set(key, value)
	})
	slog.Debug("cache set", "key", key)
	return err
}

func (s *InstrumentedStore) Delete(key string) error {
	return s.store.Delete(key)
}

func (s *InstrumentedStore) GetMetrics() *metrics.CacheMetrics {
	return s.metrics
}
