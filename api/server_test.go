package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"weatherdash.app/config"
	"weatherdash.app/errors"
	"weatherdash.app/models"
	"weatherdash.app/service"
)

// MockWeatherService for testing
type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) FetchWeather(ctx context.Context, req service.FetchRequest) (*service.FetchResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockWeatherService) Bootstrap(ctx context.Context) (*service.FetchResult, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockWeatherService) UseLocation(ctx context.Context, lat, lon float64) (*service.FetchResult, error) {
	args := m.Called(lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockWeatherService) Retry(ctx context.Context) (*service.FetchResult, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockWeatherService) ReportGeolocationError(message string) {
	m.Called(message)
}

func (m *MockWeatherService) SetUnits(ctx context.Context, units models.Units) (*service.FetchResult, error) {
	args := m.Called(units)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockWeatherService) GetPreferences() models.Preferences {
	args := m.Called()
	return args.Get(0).(models.Preferences)
}

func (m *MockWeatherService) UpdatePreferences(ctx context.Context, req models.PreferencesRequest) (models.Preferences, error) {
	args := m.Called(req)
	return args.Get(0).(models.Preferences), args.Error(1)
}

func (m *MockWeatherService) RecentSearches() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockWeatherService) Snapshot() service.State {
	args := m.Called()
	return args.Get(0).(service.State)
}

func setupTestServer(weatherService *MockWeatherService) *Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.Port = 8080
	return NewServer(cfg, weatherService)
}

func testResult(city string) *service.FetchResult {
	return &service.FetchResult{
		Weather: &models.CanonicalWeather{
			Provider: models.ProviderOpenWeather,
			Units:    models.UnitsMetric,
			Location: models.Location{Name: city},
		},
	}
}

func TestGetWeather(t *testing.T) {
	t.Run("CityQuery", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("FetchWeather", service.FetchRequest{City: "Berlin"}).
			Return(testResult("Berlin"), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?city=Berlin", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var result service.FetchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "Berlin", result.Weather.Location.Name)
		assert.False(t, result.Offline)
		mockService.AssertExpectations(t)
	})

	t.Run("CoordinateQuery", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("FetchWeather", mock.MatchedBy(func(req service.FetchRequest) bool {
			return req.Coords != nil && req.Coords.Lat == 52.52 && req.Coords.Lon == 13.405
		})).Return(testResult(""), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?lat=52.52&lon=13.405", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("PreferCacheAndUnitsForwarded", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("FetchWeather", service.FetchRequest{
			City:        "Berlin",
			Units:       models.UnitsImperial,
			PreferCache: true,
		}).Return(testResult("Berlin"), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?city=Berlin&units=imperial&prefer_cache=true", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("LatWithoutLonRejected", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?lat=52.52", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "FetchWeather")
	})

	t.Run("InvalidUnitsRejected", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?city=Berlin&units=kelvin", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NotFoundMapsTo404", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("FetchWeather", mock.Anything).
			Return(nil, errors.NewNotFoundError("location not found"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?city=Atlantis", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var response models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "location not found", response.Error)
	})

	t.Run("UpstreamFailureMapsTo503", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("FetchWeather", mock.Anything).
			Return(nil, errors.NewExternalAPIError("all weather providers failed", nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?city=Berlin", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var response models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "External service unavailable", response.Error)
	})

	t.Run("RequestIDHeaderEchoed", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("FetchWeather", mock.Anything).Return(testResult("Berlin"), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/weather?city=Berlin", nil)
		req.Header.Set("X-Request-ID", "req-42")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})
}

func TestGetState(t *testing.T) {
	mockService := new(MockWeatherService)
	server := setupTestServer(mockService)

	mockService.On("Snapshot").Return(service.State{
		Offline:        true,
		RecentSearches: []string{"Berlin"},
		ActiveTarget:   &models.ActiveTarget{Kind: models.TargetCity, City: "Berlin"},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/state", nil)
	server.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var state service.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Offline)
	assert.Equal(t, []string{"Berlin"}, state.RecentSearches)
	require.NotNil(t, state.ActiveTarget)
	assert.Equal(t, "Berlin", state.ActiveTarget.City)
}

func TestGetSearches(t *testing.T) {
	mockService := new(MockWeatherService)
	server := setupTestServer(mockService)

	mockService.On("RecentSearches").Return([]string{"Berlin", "Paris"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/searches", nil)
	server.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"searches":["Berlin","Paris"]}`, w.Body.String())
}

func TestUseLocation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("UseLocation", -1.2832533, 36.8172449).Return(testResult("Nairobi"), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/location",
			strings.NewReader(`{"lat": -1.2832533, "lon": 36.8172449}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ZeroCoordinatesAccepted", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("UseLocation", 0.0, 0.0).Return(testResult(""), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/location",
			strings.NewReader(`{"lat": 0, "lon": 0}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingCoordinatesRejected", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/location", strings.NewReader(`{"lat": 52.52}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "UseLocation")
	})

	t.Run("OutOfRangeRejected", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/location",
			strings.NewReader(`{"lat": 91, "lon": 0}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportLocationError(t *testing.T) {
	t.Run("Recorded", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("ReportGeolocationError", "permission denied").Return()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/location/error",
			strings.NewReader(`{"message": "permission denied"}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyMessageRejected", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/location/error", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ReportGeolocationError")
	})
}

func TestPreferences(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("GetPreferences").Return(models.Preferences{Units: models.UnitsImperial, Theme: "dark"})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/preferences", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var prefs models.Preferences
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
		assert.Equal(t, models.UnitsImperial, prefs.Units)
		assert.Equal(t, "dark", prefs.Theme)
	})

	t.Run("Update", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("UpdatePreferences", models.PreferencesRequest{Units: "imperial"}).
			Return(models.Preferences{Units: models.UnitsImperial}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPut, "/api/preferences",
			strings.NewReader(`{"units": "imperial"}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidUnitsRejected", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPut, "/api/preferences",
			strings.NewReader(`{"units": "kelvin"}`))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "UpdatePreferences")
	})
}

func TestRetry(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("Retry").Return(testResult("Berlin"), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/retry", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UpstreamFailure", func(t *testing.T) {
		mockService := new(MockWeatherService)
		server := setupTestServer(mockService)

		mockService.On("Retry").Return(nil, errors.NewExternalAPIError("all weather providers failed", nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/retry", nil)
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	mockService := new(MockWeatherService)
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	server.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_")
}
