package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weatherdash.app/config"
	"weatherdash.app/errors"
)

// OpenWeatherGeocoder resolves a city through the current-weather-by-name
// endpoint. The call is a capability probe: only the coordinates and
// names are used, never the weather data it happens to return.
type OpenWeatherGeocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenWeatherGeocoder(cfg *config.WeatherConfig) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL,
		client:  &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
	}
}

func (g *OpenWeatherGeocoder) ResolveCity(ctx context.Context, name string) (*GeocodeResult, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", g.apiKey)

	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s", g.baseURL, params.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build geocode request", err)
	}

	resp, err := g.client.Do(request)
	if err != nil {
		return nil, errors.NewExternalAPIError("geocode request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("location not found")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("geocode returned status code %d", resp.StatusCode), nil)
	}

	var payload struct {
		Coord struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"coord"`
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewMalformedResponseError("decode geocode response", err)
	}

	if payload.Coord.Lat == nil || payload.Coord.Lon == nil {
		return nil, errors.NewMalformedResponseError("geocode response missing coordinates", nil)
	}

	return &GeocodeResult{
		Lat:     *payload.Coord.Lat,
		Lon:     *payload.Coord.Lon,
		Name:    payload.Name,
		Country: payload.Sys.Country,
	}, nil
}

// NominatimGeocoder resolves a city through the open geocoding service,
// constrained to the single best match
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimGeocoder(cfg *config.WeatherConfig) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   cfg.GeocodeBaseURL,
		userAgent: cfg.GeocodeUserAgent,
		client:    &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
	}
}

func (g *NominatimGeocoder) ResolveCity(ctx context.Context, name string) (*GeocodeResult, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	endpoint := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build geocode request", err)
	}
	request.Header.Set("User-Agent", g.userAgent)
	request.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(request)
	if err != nil {
		return nil, errors.NewExternalAPIError("geocode request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("geocode returned status code %d", resp.StatusCode), nil)
	}

	var matches []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Address     struct {
			CountryCode string `json:"country_code"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, errors.NewMalformedResponseError("decode geocode response", err)
	}

	if len(matches) == 0 {
		return nil, errors.NewNotFoundError("location not found")
	}

	match := matches[0]

	lat, latErr := strconv.ParseFloat(match.Lat, 64)
	lon, lonErr := strconv.ParseFloat(match.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, errors.NewMalformedResponseError("geocode response has invalid coordinates", nil)
	}

	resolvedName := match.Name
	if resolvedName == "" && match.DisplayName != "" {
		resolvedName = strings.TrimSpace(strings.SplitN(match.DisplayName, ",", 2)[0])
	}
	if resolvedName == "" {
		resolvedName = query
	}

	return &GeocodeResult{
		Lat:     lat,
		Lon:     lon,
		Name:    resolvedName,
		Country: strings.ToUpper(match.Address.CountryCode),
	}, nil
}
