// Package service implements the aggregation orchestrator: the single
// decision point between cached and freshly fetched weather.
package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"weatherdash.app/cache"
	"weatherdash.app/config"
	"weatherdash.app/errors"
	"weatherdash.app/models"
	"weatherdash.app/providers"
	"weatherdash.app/storage"
)

// Durable keys outside the weather cache itself
const (
	recentSearchesKey = "weather-recent-searches"
	lastQueryKey      = "weather-last-query"
	unitsKey          = "weather-units"
	themeKey          = "weather-theme"
)

const maxRecentSearches = 5

// FetchRequest identifies one weather query. Exactly one of City or
// Coords must be set. Units zero-value means the persisted preference.
type FetchRequest struct {
	City        string
	Coords      *models.Coordinates
	Label       string
	Units       models.Units
	PreferCache bool
}

// FetchResult is a successful (possibly degraded) outcome
type FetchResult struct {
	Weather *models.CanonicalWeather `json:"weather"`
	Offline bool                     `json:"offline"`
}

// State is the observable snapshot consumed by clients
type State struct {
	Weather        *models.CanonicalWeather `json:"weather"`
	Loading        bool                     `json:"loading"`
	Offline        bool                     `json:"offline"`
	Error          string                   `json:"error,omitempty"`
	RecentSearches []string                 `json:"recentSearches"`
	ActiveTarget   *models.ActiveTarget     `json:"activeTarget,omitempty"`
}

// WeatherService coordinates the cache, the geocoder and the provider
// chain. Every public mutating operation opens a new generation; a
// resolution commits to shared state only while no later generation has
// committed, so out-of-order completions cannot clobber newer results.
type WeatherService struct {
	client   ProviderClient
	cache    *cache.FreshnessCache
	store    storage.Store
	fallback string

	generation atomic.Int64

	mu        sync.Mutex
	committed int64
	state     State
}

// NewWeatherService creates the orchestrator
func NewWeatherService(client ProviderClient, weatherCache *cache.FreshnessCache, store storage.Store, cfg *config.WeatherConfig) *WeatherService {
	fallback := "Nairobi"
	if cfg != nil && cfg.FallbackCity != "" {
		fallback = cfg.FallbackCity
	}
	return &WeatherService{
		client:   client,
		cache:    weatherCache,
		store:    store,
		fallback: fallback,
	}
}

// FetchWeather resolves one query through the cache-first flow: a fresh
// cache entry short-circuits when the caller prefers cache; otherwise
// the network is tried and any failure falls back to the stale entry as
// a degraded success. Only a total miss surfaces an error.
func (s *WeatherService) FetchWeather(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	city := strings.TrimSpace(req.City)
	if city == "" && req.Coords == nil {
		return nil, errors.NewValidationError("either city or coordinates must be provided")
	}
	if city != "" && req.Coords != nil {
		return nil, errors.NewValidationError("city and coordinates are mutually exclusive")
	}

	units := req.Units
	if units == "" {
		units = s.GetPreferences().Units
	}
	if !units.Valid() {
		return nil, errors.NewValidationError("unknown unit system")
	}

	gen := s.beginGeneration()

	var key string
	if city != "" {
		key = cache.KeyForCity(city, units)
	} else {
		key = cache.KeyForCoords(req.Coords.Lat, req.Coords.Lon, units)
	}

	fallbackEntry, hasFallback := s.cache.Get(key)

	if req.PreferCache && hasFallback && s.cache.IsFresh(fallbackEntry.FetchedAt) {
		// fresh enough to serve without touching the network; cache
		// short-circuits carry no side effects
		result := &FetchResult{Weather: &fallbackEntry.Data, Offline: false}
		s.commit(gen, func() {
			s.state.Weather = result.Weather
			s.state.Offline = false
			s.state.Error = ""
		})
		return result, nil
	}

	forecast := providers.ForecastRequest{Units: units, Name: req.Label}
	if city != "" {
		resolved, err := s.client.ResolveCity(ctx, city)
		if err != nil {
			// an unresolvable name is a terminal answer, not an
			// upstream outage; stale cache must not mask it
			s.commit(gen, func() { s.state.Error = userMessage(err) })
			return nil, err
		}
		forecast.Lat = resolved.Lat
		forecast.Lon = resolved.Lon
		// display name precedence: resolved name, then the typed city
		forecast.Name = resolved.Name
		if forecast.Name == "" {
			forecast.Name = city
		}
		forecast.Country = resolved.Country
	} else {
		forecast.Lat = req.Coords.Lat
		forecast.Lon = req.Coords.Lon
	}

	weather, err := s.client.FetchWeather(ctx, forecast)
	if err != nil {
		if hasFallback {
			slog.Info("serving stale cache after provider failure", "key", key, "error", err)
			result := &FetchResult{Weather: &fallbackEntry.Data, Offline: true}
			s.commit(gen, func() {
				s.state.Weather = result.Weather
				s.state.Offline = true
				s.state.Error = ""
			})
			return result, nil
		}
		s.commit(gen, func() { s.state.Error = userMessage(err) })
		return nil, err
	}

	if cacheErr := s.cache.Put(key, &models.CacheEntry{FetchedAt: weather.FetchedAt, Data: *weather}); cacheErr != nil {
		slog.Error("cache write-back failed", "key", key, "error", cacheErr)
	}

	// the target, search history and last query all carry the resolved
	// identity, not the raw input, so "berlin" and "Berlin" converge
	identity := weather.Location.Name
	if identity == "" {
		identity = city
	}

	result := &FetchResult{Weather: weather, Offline: false}
	s.commit(gen, func() {
		s.state.Weather = weather
		s.state.Offline = false
		s.state.Error = ""
		if city != "" {
			s.applyTarget(&models.ActiveTarget{Kind: models.TargetCity, City: identity, Label: req.Label})
		} else {
			coords := *req.Coords
			s.applyTarget(&models.ActiveTarget{Kind: models.TargetCoords, Coords: &coords, Label: req.Label})
		}
		if weather.Location.Name != "" {
			s.recordSearchLocked(weather.Location.Name)
		}
		if identity != "" {
			if err := s.store.Set(lastQueryKey, identity); err != nil {
				slog.Error("persist last query failed", "error", err)
			}
		}
	})
	return result, nil
}

// Bootstrap restores durable state and issues a cache-preferring fetch
// for the last used query, falling back to the configured default city
func (s *WeatherService) Bootstrap(ctx context.Context) (*FetchResult, error) {
	s.mu.Lock()
	s.state.RecentSearches = s.loadSearches()
	s.mu.Unlock()

	city := s.fallback
	if raw, found, err := s.store.Get(lastQueryKey); err == nil && found && strings.TrimSpace(raw) != "" {
		city = strings.TrimSpace(raw)
	}

	return s.FetchWeather(ctx, FetchRequest{City: city, PreferCache: true})
}

// UseLocation is the geolocation entry point
func (s *WeatherService) UseLocation(ctx context.Context, lat, lon float64) (*FetchResult, error) {
	return s.FetchWeather(ctx, FetchRequest{
		Coords: &models.Coordinates{Lat: lat, Lon: lon},
		Label:  "My location",
	})
}

// Retry re-issues the active target, bypassing the freshness
// short-circuit
func (s *WeatherService) Retry(ctx context.Context) (*FetchResult, error) {
	s.mu.Lock()
	target := s.state.ActiveTarget
	s.mu.Unlock()

	if target == nil {
		return s.Bootstrap(ctx)
	}

	req := FetchRequest{Label: target.Label}
	switch target.Kind {
	case models.TargetCity:
		req.City = target.City
	case models.TargetCoords:
		if target.Coords != nil {
			coords := *target.Coords
			req.Coords = &coords
		}
	}
	return s.FetchWeather(ctx, req)
}

// ReportGeolocationError surfaces a platform geolocation failure as the
// user-visible error without disturbing the displayed weather
func (s *WeatherService) ReportGeolocationError(message string) {
	gen := s.beginGeneration()
	s.commit(gen, func() {
		s.state.Error = message
	})
}

// SetUnits persists the unit preference and re-fetches the active
// target in the new system. Unchanged units are a no-op.
func (s *WeatherService) SetUnits(ctx context.Context, units models.Units) (*FetchResult, error) {
	if !units.Valid() {
		return nil, errors.NewValidationError("unknown unit system")
	}
	if s.GetPreferences().Units == units {
		return nil, nil
	}
	if err := s.store.Set(unitsKey, string(units)); err != nil {
		return nil, errors.NewStorageError("persist unit preference", err)
	}

	s.mu.Lock()
	target := s.state.ActiveTarget
	s.mu.Unlock()
	if target == nil {
		return nil, nil
	}
	return s.Retry(ctx)
}

// GetPreferences loads the durable preferences, defaulting to metric
func (s *WeatherService) GetPreferences() models.Preferences {
	prefs := models.Preferences{Units: models.UnitsMetric}
	if raw, found, err := s.store.Get(unitsKey); err == nil && found && models.Units(raw).Valid() {
		prefs.Units = models.Units(raw)
	}
	if raw, found, err := s.store.Get(themeKey); err == nil && found {
		prefs.Theme = raw
	}
	return prefs
}

// UpdatePreferences applies a partial preference update; a units change
// triggers the SetUnits re-fetch
func (s *WeatherService) UpdatePreferences(ctx context.Context, req models.PreferencesRequest) (models.Preferences, error) {
	if req.Theme != "" {
		if err := s.store.Set(themeKey, req.Theme); err != nil {
			return models.Preferences{}, errors.NewStorageError("persist theme preference", err)
		}
	}
	if req.Units != "" {
		if _, err := s.SetUnits(ctx, models.Units(req.Units)); err != nil {
			return models.Preferences{}, err
		}
	}
	return s.GetPreferences(), nil
}

// RecentSearches returns the persisted search history, most recent first
func (s *WeatherService) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.RecentSearches == nil {
		s.state.RecentSearches = s.loadSearches()
	}
	return append([]string(nil), s.state.RecentSearches...)
}

// Snapshot returns the current observable state
func (s *WeatherService) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	snapshot.RecentSearches = append([]string(nil), s.state.RecentSearches...)
	if s.state.ActiveTarget != nil {
		target := *s.state.ActiveTarget
		snapshot.ActiveTarget = &target
	}
	return snapshot
}

func (s *WeatherService) beginGeneration() int64 {
	gen := s.generation.Add(1)
	s.mu.Lock()
	if gen > s.committed {
		s.state.Loading = true
	}
	s.mu.Unlock()
	return gen
}

// commit applies a state mutation unless a later generation has already
// committed; stragglers are discarded whole
func (s *WeatherService) commit(gen int64, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.committed {
		slog.Debug("discarding stale generation", "generation", gen, "committed", s.committed)
		return
	}
	s.committed = gen
	s.state.Loading = s.generation.Load() > gen
	apply()
}

// applyTarget keeps the existing target value when the new one denotes
// the same place, so repeating a query does not churn observers
func (s *WeatherService) applyTarget(target *models.ActiveTarget) {
	if s.state.ActiveTarget.Equal(target) {
		return
	}
	s.state.ActiveTarget = target
}

// recordSearchLocked upserts a resolved city name into the recent
// searches: case-insensitive dedupe, most recent first, capped. Caller
// holds the mutex.
func (s *WeatherService) recordSearchLocked(name string) {
	if s.state.RecentSearches == nil {
		s.state.RecentSearches = s.loadSearches()
	}

	updated := []string{name}
	for _, existing := range s.state.RecentSearches {
		if strings.EqualFold(existing, name) {
			continue
		}
		updated = append(updated, existing)
		if len(updated) == maxRecentSearches {
			break
		}
	}
	s.state.RecentSearches = updated

	data, err := json.Marshal(updated)
	if err != nil {
		slog.Error("marshal recent searches failed", "error", err)
		return
	}
	if err := s.store.Set(recentSearchesKey, string(data)); err != nil {
		slog.Error("persist recent searches failed", "error", err)
	}
}

func (s *WeatherService) loadSearches() []string {
	raw, found, err := s.store.Get(recentSearchesKey)
	if err != nil || !found {
		return []string{}
	}
	var searches []string
	if err := json.Unmarshal([]byte(raw), &searches); err != nil {
		slog.Error("recent searches unmarshal failed", "error", err)
		return []string{}
	}
	if len(searches) > maxRecentSearches {
		searches = searches[:maxRecentSearches]
	}
	return searches
}

// userMessage extracts the display message of an application error
func userMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
