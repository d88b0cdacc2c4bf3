package service

import (
	"context"

	"weatherdash.app/models"
	"weatherdash.app/providers"
)

// ProviderClient is the upstream surface the orchestrator depends on
type ProviderClient interface {
	FetchWeather(ctx context.Context, req providers.ForecastRequest) (*models.CanonicalWeather, error)
	ResolveCity(ctx context.Context, name string) (*providers.GeocodeResult, error)
}

// WeatherServiceInterface defines the orchestrator operations the API
// layer consumes
type WeatherServiceInterface interface {
	FetchWeather(ctx context.Context, req FetchRequest) (*FetchResult, error)
	Bootstrap(ctx context.Context) (*FetchResult, error)
	UseLocation(ctx context.Context, lat, lon float64) (*FetchResult, error)
	Retry(ctx context.Context) (*FetchResult, error)
	ReportGeolocationError(message string)
	SetUnits(ctx context.Context, units models.Units) (*FetchResult, error)
	GetPreferences() models.Preferences
	UpdatePreferences(ctx context.Context, req models.PreferencesRequest) (models.Preferences, error)
	RecentSearches() []string
	Snapshot() State
}
