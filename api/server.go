package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"weatherdash.app/config"
	weathererr "weatherdash.app/errors"
	"weatherdash.app/models"
	"weatherdash.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router         *gin.Engine
	config         *config.Config
	weatherService service.WeatherServiceInterface
}

// NewServer creates and configures a new HTTP server
func NewServer(config *config.Config, weatherService service.WeatherServiceInterface) *Server {
	router := gin.Default()
	router.Use(requestIDMiddleware())

	server := &Server{
		router:         router,
		config:         config,
		weatherService: weatherService,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/weather", s.getWeather)
		api.GET("/state", s.getState)
		api.GET("/searches", s.getSearches)
		api.POST("/location", s.useLocation)
		api.POST("/location/error", s.reportLocationError)
		api.GET("/preferences", s.getPreferences)
		api.PUT("/preferences", s.updatePreferences)
		api.POST("/retry", s.retry)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// requestIDMiddleware tags every request with an id for log correlation
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func (s *Server) getWeather(c *gin.Context) {
	var query models.WeatherQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		slog.Error("weather query binding error", "error", err, "request_id", c.GetString("request_id"))
		s.handleError(c, weathererr.NewValidationError("invalid query parameters"))
		return
	}

	req := service.FetchRequest{
		City:        query.City,
		Label:       query.Label,
		Units:       models.Units(query.Units),
		PreferCache: query.PreferCache,
	}
	if query.Lat != nil || query.Lon != nil {
		if query.Lat == nil || query.Lon == nil {
			s.handleError(c, weathererr.NewValidationError("lat and lon must be provided together"))
			return
		}
		req.Coords = &models.Coordinates{Lat: *query.Lat, Lon: *query.Lon}
	}

	slog.Debug("fetching weather", "city", req.City, "prefer_cache", req.PreferCache, "request_id", c.GetString("request_id"))
	result, err := s.weatherService.FetchWeather(c.Request.Context(), req)
	if err != nil {
		slog.Error("weather fetch error", "error", err, "city", req.City, "request_id", c.GetString("request_id"))
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.weatherService.Snapshot())
}

func (s *Server) getSearches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"searches": s.weatherService.RecentSearches()})
}

func (s *Server) useLocation(c *gin.Context) {
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("location binding error", "error", err)
		s.handleError(c, weathererr.NewValidationError("invalid location payload"))
		return
	}

	result, err := s.weatherService.UseLocation(c.Request.Context(), *req.Lat, *req.Lon)
	if err != nil {
		slog.Error("location fetch error", "error", err, "lat", *req.Lat, "lon", *req.Lon)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) reportLocationError(c *gin.Context) {
	var req models.GeolocationErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, weathererr.NewValidationError("message is required"))
		return
	}

	s.weatherService.ReportGeolocationError(req.Message)
	c.JSON(http.StatusOK, gin.H{"message": "geolocation error recorded"})
}

func (s *Server) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.weatherService.GetPreferences())
}

func (s *Server) updatePreferences(c *gin.Context) {
	var req models.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("preferences binding error", "error", err)
		s.handleError(c, weathererr.NewValidationError("invalid preferences payload"))
		return
	}

	prefs, err := s.weatherService.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		slog.Error("preferences update error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (s *Server) retry(c *gin.Context) {
	result, err := s.weatherService.Retry(c.Request.Context())
	if err != nil {
		slog.Error("retry error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *weathererr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case weathererr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case weathererr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case weathererr.GeolocationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case weathererr.ExternalAPIError:
			statusCode = http.StatusServiceUnavailable
			message = "External service unavailable"
		case weathererr.MalformedResponseError:
			statusCode = http.StatusServiceUnavailable
			message = "External service unavailable"
		case weathererr.StorageError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
