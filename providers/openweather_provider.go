package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"weatherdash.app/config"
	"weatherdash.app/errors"
	"weatherdash.app/models"
)

// OpenWeatherProvider implements ForecastProvider for the OpenWeather
// One Call API. It requires a credential and sits behind a circuit
// breaker; an open breaker counts as a provider failure and triggers
// fallback down the chain.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates a new OpenWeather provider
func NewOpenWeatherProvider(cfg *config.WeatherConfig) *OpenWeatherProvider {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL,
		client:  &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
		breaker: breaker,
	}
}

// FetchForecast retrieves and normalizes a One Call forecast
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, req ForecastRequest) (*models.CanonicalWeather, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", req.Lat))
	params.Set("lon", fmt.Sprintf("%f", req.Lon))
	params.Set("units", string(req.Units))
	params.Set("exclude", "minutely,alerts")
	params.Set("appid", p.apiKey)

	endpoint := fmt.Sprintf("%s/data/3.0/onecall?%s", p.baseURL, params.Encode())

	payload, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetchPayload(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}

	return NormalizeOpenWeather(payload.(*OpenWeatherPayload), NormalizeContext{
		Units:   req.Units,
		Lat:     req.Lat,
		Lon:     req.Lon,
		Name:    req.Name,
		Country: req.Country,
	}), nil
}

func (p *OpenWeatherProvider) fetchPayload(ctx context.Context, endpoint string) (*OpenWeatherPayload, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build openweather request", err)
	}

	resp, err := p.client.Do(request)
	if err != nil {
		return nil, errors.NewExternalAPIError("openweather request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			// Ignore close error as it's not critical for the main operation
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("openweather returned status code %d", resp.StatusCode), nil)
	}

	var payload OpenWeatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewMalformedResponseError("decode openweather response", err)
	}

	return &payload, nil
}
