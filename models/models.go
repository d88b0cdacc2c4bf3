// Package models defines data structures used throughout the application
package models

// Provider identifies which upstream produced a weather snapshot
type Provider string

const (
	ProviderOpenWeather Provider = "openweather"
	ProviderOpenMeteo   Provider = "open-meteo"
)

// Units identifies the unit system numeric fields are expressed in.
// A CanonicalWeather is unit-system-specific and is never reused across
// a unit change without a re-fetch.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether the value is a known unit system
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// Coordinates is a geographic point in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location describes where a snapshot applies. Name and Country may be
// empty strings when unresolved.
type Location struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
}

// Timezone carries the offset applied uniformly to all timestamps in a
// snapshot for local-time display
type Timezone struct {
	Name          string `json:"name"`
	OffsetSeconds int    `json:"offsetSeconds"`
}

// CurrentConditions is the single-point current reading
type CurrentConditions struct {
	Timestamp         *int64   `json:"dt"`
	Temp              *float64 `json:"temp"`
	FeelsLike         *float64 `json:"feelsLike"`
	Humidity          *float64 `json:"humidity"`
	WindSpeed         *float64 `json:"windSpeed"`
	Pressure          *float64 `json:"pressure"`
	PrecipProbability *int     `json:"precipitationProbability"`
	ConditionCode     string   `json:"conditionCode"`
	ConditionText     string   `json:"conditionText"`
	Sunrise           *int64   `json:"sunrise"`
	Sunset            *int64   `json:"sunset"`
}

// HourlyPoint is one entry of the hourly forecast, same shape as the
// current reading minus sunrise/sunset
type HourlyPoint struct {
	Timestamp         *int64   `json:"dt"`
	Temp              *float64 `json:"temp"`
	FeelsLike         *float64 `json:"feelsLike"`
	Humidity          *float64 `json:"humidity"`
	WindSpeed         *float64 `json:"windSpeed"`
	Pressure          *float64 `json:"pressure"`
	PrecipProbability *int     `json:"precipitationProbability"`
	ConditionCode     string   `json:"conditionCode"`
	ConditionText     string   `json:"conditionText"`
}

// DailyPoint is one entry of the multi-day forecast
type DailyPoint struct {
	Timestamp         *int64   `json:"dt"`
	TempMin           *float64 `json:"tempMin"`
	TempMax           *float64 `json:"tempMax"`
	ConditionCode     string   `json:"conditionCode"`
	ConditionText     string   `json:"conditionText"`
	PrecipProbability *int     `json:"precipitationProbability"`
	Sunrise           *int64   `json:"sunrise"`
	Sunset            *int64   `json:"sunset"`
}

// CanonicalWeather is the unified, provider-agnostic weather snapshot.
// It is immutable once constructed: Hourly holds at most 24 points in
// non-decreasing timestamp order, Daily at most 7. FetchedAt is the
// normalization wall-clock time in milliseconds, never the upstream's
// own clock.
type CanonicalWeather struct {
	Provider  Provider          `json:"provider"`
	FetchedAt int64             `json:"fetchedAt"`
	Units     Units             `json:"units"`
	Location  Location          `json:"location"`
	Timezone  Timezone          `json:"timezone"`
	Current   CurrentConditions `json:"current"`
	Hourly    []HourlyPoint     `json:"hourly"`
	Daily     []DailyPoint      `json:"daily"`
}

// CacheEntry is the persisted unit of the freshness cache
type CacheEntry struct {
	FetchedAt int64            `json:"fetchedAt"`
	Data      CanonicalWeather `json:"data"`
}

// TargetKind distinguishes city-keyed from coordinate-keyed targets
type TargetKind string

const (
	TargetCity   TargetKind = "city"
	TargetCoords TargetKind = "coords"
)

// ActiveTarget is the single query the orchestrator considers current.
// A unit change re-issues a fetch against the same target.
type ActiveTarget struct {
	Kind   TargetKind   `json:"kind"`
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
	Label  string       `json:"label,omitempty"`
}

// Equal reports whether two targets identify the same place: same city
// name, or same coordinates to full precision
func (t *ActiveTarget) Equal(other *ActiveTarget) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TargetCity:
		return t.City == other.City
	case TargetCoords:
		if t.Coords == nil || other.Coords == nil {
			return t.Coords == other.Coords
		}
		return t.Coords.Lat == other.Coords.Lat && t.Coords.Lon == other.Coords.Lon
	}
	return false
}

// Preferences are durable user settings. Theme is opaque to the core.
type Preferences struct {
	Units Units  `json:"units"`
	Theme string `json:"theme,omitempty"`
}

// WeatherQuery binds the weather endpoint's query parameters
type WeatherQuery struct {
	City        string   `form:"city"`
	Lat         *float64 `form:"lat"`
	Lon         *float64 `form:"lon"`
	Label       string   `form:"label"`
	Units       string   `form:"units" binding:"omitempty,oneof=metric imperial"`
	PreferCache bool     `form:"prefer_cache"`
}

// LocationRequest carries a geolocation result from the client
type LocationRequest struct {
	Lat *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" binding:"required,gte=-180,lte=180"`
}

// GeolocationErrorRequest surfaces a platform geolocation failure
type GeolocationErrorRequest struct {
	Message string `json:"message" binding:"required"`
}

// PreferencesRequest binds preference updates
type PreferencesRequest struct {
	Units string `json:"units" binding:"omitempty,oneof=metric imperial"`
	Theme string `json:"theme"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
