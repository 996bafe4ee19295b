package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model/external"
	"forecast-api/pkg/http"
	"forecast-api/pkg/metrics"
)

const (
	openMeteoHourlyFields = "temperature_2m,weather_code,precipitation_probability"
	openMeteoDailyFields  = "temperature_2m_max,temperature_2m_min,weather_code,uv_index_max,precipitation_probability_max"
	openMeteoForecastDays = "7"
)

var errUVIndexMissing = errors.New("uv index missing from response")

// openMeteoGatewayImpl implements ForecastGateway and UVIndexGateway against Open-Meteo
type openMeteoGatewayImpl struct {
	httpClient *http.Client
	throttle   Throttle
	metrics    *metrics.Collector
}

func newOpenMeteoGateway(config ProviderConfig) *openMeteoGatewayImpl {
	return &openMeteoGatewayImpl{
		httpClient: http.NewHttpClient(config.BaseURL, config.ClientOptions),
		throttle:   config.throttle(),
		metrics:    config.Metrics,
	}
}

// NewOpenMeteoForecastGateway creates a ForecastGateway backed by /v1/forecast
func NewOpenMeteoForecastGateway(config ProviderConfig) ForecastGateway {
	return newOpenMeteoGateway(config)
}

// NewOpenMeteoUVIndexGateway creates a UVIndexGateway backed by /v1/forecast?current=uv_index
func NewOpenMeteoUVIndexGateway(config ProviderConfig) UVIndexGateway {
	return newOpenMeteoGateway(config)
}

func (g *openMeteoGatewayImpl) Name() string {
	return ProviderOpenMeteo
}

// FetchForecast gets hourly and daily series in unix time with the location's offset
func (g *openMeteoGatewayImpl) FetchForecast(ctx context.Context, coordinates entity.Coordinates) (*entity.RawForecast, error) {
	response, err := g.get(ctx, coordinates, map[string]string{
		"hourly":        openMeteoHourlyFields,
		"daily":         openMeteoDailyFields,
		"timezone":      "auto",
		"timeformat":    "unixtime",
		"forecast_days": openMeteoForecastDays,
	})
	if err != nil {
		return nil, err
	}

	return g.convertForecastResponse(response), nil
}

// FindUVIndex gets the current UV index
func (g *openMeteoGatewayImpl) FindUVIndex(ctx context.Context, coordinates entity.Coordinates) (float64, error) {
	response, err := g.get(ctx, coordinates, map[string]string{
		"current":    "uv_index",
		"timeformat": "unixtime",
	})
	if err != nil {
		return 0, err
	}

	if response.Current == nil || response.Current.UVIndex == nil {
		return 0, transportError(ProviderOpenMeteo, errUVIndexMissing)
	}
	return *response.Current.UVIndex, nil
}

func (g *openMeteoGatewayImpl) get(ctx context.Context, coordinates entity.Coordinates, params map[string]string) (*external.OpenMeteoForecastResponse, error) {
	if err := g.throttle.Wait(ctx); err != nil {
		return nil, transportError(ProviderOpenMeteo, err)
	}

	params["latitude"] = formatCoordinate(coordinates.Latitude)
	params["longitude"] = formatCoordinate(coordinates.Longitude)

	start := time.Now()
	successResp, errResp, _, err := g.httpClient.Request().
		WithContext(ctx).
		WithPath("/v1/forecast").
		WithQueryParams(params).
		WithSuccessResp(&external.OpenMeteoForecastResponse{}).
		WithErrorResp(&external.OpenMeteoErrorResponse{}).
		Execute()
	recordProviderRequest(g.metrics, ProviderOpenMeteo, start, err)

	if err != nil {
		if errResp != nil {
			errorResponse := errResp.(*external.OpenMeteoErrorResponse)
			if errorResponse.Reason != "" {
				err = fmt.Errorf("%w: %s", err, errorResponse.Reason)
			}
		}
		return nil, transportError(ProviderOpenMeteo, err)
	}

	return successResp.(*external.OpenMeteoForecastResponse), nil
}

// convertForecastResponse converts the parallel series, skipping entries without temperatures.
// Entries without a weather code get an Unknown condition.
func (g *openMeteoGatewayImpl) convertForecastResponse(response *external.OpenMeteoForecastResponse) *entity.RawForecast {
	forecast := &entity.RawForecast{
		Provider:         ProviderOpenMeteo,
		UTCOffsetSeconds: response.UTCOffsetSeconds,
	}

	if hourly := response.Hourly; hourly != nil {
		for i, timestamp := range hourly.Time {
			temperature := external.ValueAt(hourly.Temperature, i)
			if temperature == nil {
				continue
			}
			forecast.Hourly = append(forecast.Hourly, entity.HourlySample{
				Timestamp:           timestamp,
				Temperature:         *temperature,
				Condition:           entity.ConditionFromWMO(weatherCode(external.ValueAt(hourly.WeatherCode, i))),
				PrecipitationChance: wholePercent(external.ValueAt(hourly.PrecipitationProbability, i)),
			})
		}
	}

	if daily := response.Daily; daily != nil {
		for i, timestamp := range daily.Time {
			maxTemperature := external.ValueAt(daily.TemperatureMax, i)
			minTemperature := external.ValueAt(daily.TemperatureMin, i)
			if maxTemperature == nil || minTemperature == nil {
				continue
			}
			forecast.Daily = append(forecast.Daily, entity.DailySample{
				Timestamp:           timestamp,
				Max:                 *maxTemperature,
				Min:                 *minTemperature,
				Condition:           entity.ConditionFromWMO(weatherCode(external.ValueAt(daily.WeatherCode, i))),
				UVIndex:             external.ValueAt(daily.UVIndexMax, i),
				PrecipitationChance: wholePercent(external.ValueAt(daily.PrecipitationProbabilityMax, i)),
			})
		}
	}

	return forecast
}
