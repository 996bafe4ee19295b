package api

import (
	"errors"
	"math"
	"strconv"
	"time"

	"forecast-api/internal/domain/model"
	"forecast-api/pkg/http"
	"forecast-api/pkg/metrics"
)

const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderOpenMeteo      = "open-meteo"
)

// ProviderConfig configures the access to one weather provider
type ProviderConfig struct {
	BaseURL       string
	APIKey        string
	ClientOptions http.ClientOptions
	Throttle      Throttle
	Metrics       *metrics.Collector
}

func (c ProviderConfig) throttle() Throttle {
	if c.Throttle == nil {
		return NewNoopThrottle()
	}
	return c.Throttle
}

// recordProviderRequest records the call outcome when metrics are enabled
func recordProviderRequest(collector *metrics.Collector, provider string, start time.Time, err error) {
	if collector == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	collector.RecordProviderRequest(provider, outcome, time.Since(start))
}

// transportError wraps err unless it already carries a typed provider error
func transportError(provider string, err error) error {
	var transport *model.TransportError
	var notFound *model.CityNotFoundError
	if errors.As(err, &transport) || errors.As(err, &notFound) {
		return err
	}
	return &model.TransportError{Provider: provider, Err: err}
}

func formatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', 4, 64)
}

// percent converts a 0..1 probability to a whole percentage
func percent(probability *float64) *int {
	if probability == nil {
		return nil
	}
	value := int(math.Round(*probability * 100))
	return &value
}

// wholePercent rounds a 0..100 value
func wholePercent(value *float64) *int {
	if value == nil {
		return nil
	}
	rounded := int(math.Round(*value))
	return &rounded
}

// weatherCode converts a numeric WMO code as decoded from JSON
func weatherCode(value *float64) *int {
	if value == nil {
		return nil
	}
	code := int(*value)
	return &code
}
