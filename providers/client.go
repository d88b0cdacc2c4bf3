package providers

import (
	"context"
	"log/slog"

	"weatherdash.app/config"
	"weatherdash.app/errors"
	"weatherdash.app/models"
)

// Client is the single entry point to the upstream providers. The
// OpenWeather credential is checked once at construction: without it the
// primary provider and its geocoder are disabled for the process
// lifetime, and Open-Meteo with the open geocoding service serve alone.
type Client struct {
	chain         ForecastChain
	geocoder      Geocoder
	hasCredential bool
}

// NewClient wires the provider chain and geocoder from configuration
func NewClient(cfg *config.WeatherConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("weather config cannot be nil", nil)
	}

	client := &Client{
		hasCredential: cfg.OpenWeatherAPIKey != "",
	}

	builder := NewChainBuilder()
	if client.hasCredential {
		builder.AddHandler(NewOpenWeatherHandler(NewOpenWeatherProvider(cfg)))
		client.geocoder = NewOpenWeatherGeocoder(cfg)
	} else {
		client.geocoder = NewNominatimGeocoder(cfg)
	}
	builder.AddHandler(NewOpenMeteoHandler(NewOpenMeteoProvider(cfg)))
	client.chain = builder.Build()

	slog.Info("provider client configured",
		"primary_enabled", client.hasCredential,
		"chain", client.chain.GetProviderName())

	return client, nil
}

// FetchWeather runs the fallback chain for one coordinate pair. The
// result shape is identical regardless of which provider served it,
// distinguished only by the Provider tag.
func (c *Client) FetchWeather(ctx context.Context, req ForecastRequest) (*models.CanonicalWeather, error) {
	if !req.Units.Valid() {
		return nil, errors.NewValidationError("unknown unit system")
	}
	return c.chain.Handle(ctx, req)
}

// ResolveCity resolves a free-text city name through the configured
// geocoder
func (c *Client) ResolveCity(ctx context.Context, name string) (*GeocodeResult, error) {
	return c.geocoder.ResolveCity(ctx, name)
}

// HasCredential reports whether the primary provider path is enabled
func (c *Client) HasCredential() bool {
	return c.hasCredential
}

// GetProviderInfo describes the wired chain for diagnostics
func (c *Client) GetProviderInfo() map[string]interface{} {
	return map[string]interface{}{
		"primary_enabled": c.hasCredential,
		"chain_name":      c.chain.GetProviderName(),
	}
}
