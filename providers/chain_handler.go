package providers

import (
	"context"
	"log/slog"
	"time"

	"weatherdash.app/errors"
	"weatherdash.app/metrics"
	"weatherdash.app/models"
)

// BaseForecastHandler links one provider into the fallback chain. A
// provider failure is logged and handed to the next handler; the caller
// never sees which provider served the request except through the
// Provider tag on the result.
type BaseForecastHandler struct {
	next         ForecastChain
	provider     ForecastProvider
	providerName string
	metrics      *metrics.ProviderMetrics
}

func NewBaseForecastHandler(provider ForecastProvider, providerName string) *BaseForecastHandler {
	return &BaseForecastHandler{
		provider:     provider,
		providerName: providerName,
		metrics:      metrics.NewProviderMetrics(providerName),
	}
}

func (h *BaseForecastHandler) Handle(ctx context.Context, req ForecastRequest) (*models.CanonicalWeather, error) {
	if h.provider != nil {
		h.metrics.RecordRequest()
		start := time.Now()
		response, err := h.provider.FetchForecast(ctx, req)
		h.metrics.RecordLatency(time.Since(start).Seconds())
		if err == nil {
			return response, nil
		}

		slog.Info("provider failed", "provider", h.providerName, "lat", req.Lat, "lon", req.Lon, "error", err)
		h.metrics.RecordFailure()

		// If this is the last handler in the chain, return the actual error
		if h.next == nil {
			return nil, err
		}
		h.metrics.RecordFallback()
	}

	if h.next != nil {
		return h.next.Handle(ctx, req)
	}

	return nil, errors.NewExternalAPIError("all weather providers failed", nil)
}

func (h *BaseForecastHandler) SetNext(handler ForecastChain) {
	h.next = handler
}

func (h *BaseForecastHandler) GetProviderName() string {
	return h.providerName
}

type OpenWeatherHandler struct {
	*BaseForecastHandler
}

func NewOpenWeatherHandler(provider ForecastProvider) ForecastChain {
	return &OpenWeatherHandler{
		BaseForecastHandler: NewBaseForecastHandler(provider, "OpenWeather"),
	}
}

type OpenMeteoHandler struct {
	*BaseForecastHandler
}

func NewOpenMeteoHandler(provider ForecastProvider) ForecastChain {
	return &OpenMeteoHandler{
		BaseForecastHandler: NewBaseForecastHandler(provider, "OpenMeteo"),
	}
}

type ChainBuilder struct {
	handlers []ForecastChain
}

func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{
		handlers: make([]ForecastChain, 0),
	}
}

func (cb *ChainBuilder) AddHandler(handler ForecastChain) *ChainBuilder {
	cb.handlers = append(cb.handlers, handler)
	return cb
}

func (cb *ChainBuilder) Build() ForecastChain {
	if len(cb.handlers) == 0 {
		return nil
	}

	for i := 0; i < len(cb.handlers)-1; i++ {
		cb.handlers[i].SetNext(cb.handlers[i+1])
	}

	return cb.handlers[0]
}
