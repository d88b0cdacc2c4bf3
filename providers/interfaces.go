package providers

import (
	"context"

	"weatherdash.app/models"
)

// ForecastRequest identifies one upstream forecast call
type ForecastRequest struct {
	Lat     float64
	Lon     float64
	Units   models.Units
	Name    string
	Country string
}

// ForecastProvider defines the interface for weather data providers
type ForecastProvider interface {
	FetchForecast(ctx context.Context, req ForecastRequest) (*models.CanonicalWeather, error)
}

// ForecastChain defines the interface for the provider fallback chain
type ForecastChain interface {
	Handle(ctx context.Context, req ForecastRequest) (*models.CanonicalWeather, error)
	SetNext(handler ForecastChain)
	GetProviderName() string
}

// GeocodeResult is a resolved city
type GeocodeResult struct {
	Lat     float64
	Lon     float64
	Name    string
	Country string
}

// Geocoder resolves a free-text city name to coordinates and a display
// name
type Geocoder interface {
	ResolveCity(ctx context.Context, name string) (*GeocodeResult, error)
}
