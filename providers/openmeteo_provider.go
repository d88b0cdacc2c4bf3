package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weatherdash.app/config"
	"weatherdash.app/errors"
	"weatherdash.app/models"
)

// OpenMeteoProvider implements ForecastProvider for Open-Meteo. It
// needs no credential and is always the last resort of the chain.
type OpenMeteoProvider struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteoProvider creates a new Open-Meteo provider
func NewOpenMeteoProvider(cfg *config.WeatherConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		baseURL: cfg.OpenMeteoBaseURL,
		client:  &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
	}
}

// FetchForecast retrieves and normalizes a forecast. Temperature and
// wind units are requested upstream in the display unit system, so no
// local conversion is applied afterwards.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, req ForecastRequest) (*models.CanonicalWeather, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", req.Lat))
	params.Set("longitude", fmt.Sprintf("%f", req.Lon))
	params.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,weathercode,precipitation_probability")
	params.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,sunrise,sunset,precipitation_probability_max")
	params.Set("current_weather", "true")
	params.Set("timezone", "auto")
	if req.Units == models.UnitsImperial {
		params.Set("temperature_unit", "fahrenheit")
		params.Set("wind_speed_unit", "mph")
	} else {
		params.Set("temperature_unit", "celsius")
		params.Set("wind_speed_unit", "kmh")
	}

	endpoint := fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, params.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build open-meteo request", err)
	}

	resp, err := p.client.Do(request)
	if err != nil {
		return nil, errors.NewExternalAPIError("open-meteo request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("open-meteo returned status code %d", resp.StatusCode), nil)
	}

	var payload OpenMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewMalformedResponseError("decode open-meteo response", err)
	}

	return NormalizeOpenMeteo(&payload, NormalizeContext{
		Units:   req.Units,
		Lat:     req.Lat,
		Lon:     req.Lon,
		Name:    req.Name,
		Country: req.Country,
	}), nil
}
