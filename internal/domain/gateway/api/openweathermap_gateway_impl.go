package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model"
	"forecast-api/internal/domain/model/external"
	"forecast-api/pkg/http"
	"forecast-api/pkg/metrics"
)

const (
	codeOK       = "200"
	codeNotFound = "404"
)

// openWeatherGatewayImpl implements CurrentWeatherGateway and ForecastGateway against OpenWeatherMap
type openWeatherGatewayImpl struct {
	httpClient *http.Client
	throttle   Throttle
	metrics    *metrics.Collector
}

func newOpenWeatherGateway(config ProviderConfig) *openWeatherGatewayImpl {
	clientOptions := config.ClientOptions
	clientOptions.DefaultQueryParams = map[string]string{
		"appid": config.APIKey,
		"units": "metric",
	}
	clientOptions.SensitiveParams = append(clientOptions.SensitiveParams, "appid")

	return &openWeatherGatewayImpl{
		httpClient: http.NewHttpClient(config.BaseURL, clientOptions),
		throttle:   config.throttle(),
		metrics:    config.Metrics,
	}
}

// NewOpenWeatherCurrentGateway creates a CurrentWeatherGateway backed by /data/2.5/weather
func NewOpenWeatherCurrentGateway(config ProviderConfig) CurrentWeatherGateway {
	return newOpenWeatherGateway(config)
}

// NewOpenWeatherForecastGateway creates a ForecastGateway backed by the One Call API
func NewOpenWeatherForecastGateway(config ProviderConfig) ForecastGateway {
	return newOpenWeatherGateway(config)
}

func (g *openWeatherGatewayImpl) Name() string {
	return ProviderOpenWeatherMap
}

// FindCurrentByCity looks up the current conditions of a city by name
func (g *openWeatherGatewayImpl) FindCurrentByCity(ctx context.Context, city string) (*entity.CurrentConditions, error) {
	if err := g.throttle.Wait(ctx); err != nil {
		return nil, transportError(ProviderOpenWeatherMap, err)
	}

	start := time.Now()
	successResp, errResp, status, err := g.httpClient.Request().
		WithContext(ctx).
		WithPath("/data/2.5/weather").
		WithQueryParams(map[string]string{"q": city}).
		WithSuccessResp(&external.OpenWeatherCurrentResponse{}).
		WithErrorResp(&external.OpenWeatherErrorResponse{}).
		Execute()
	recordProviderRequest(g.metrics, ProviderOpenWeatherMap, start, err)

	if err != nil {
		if status == nethttp.StatusNotFound {
			return nil, &model.CityNotFoundError{Query: city}
		}
		if errResp != nil {
			errorResponse := errResp.(*external.OpenWeatherErrorResponse)
			if errorResponse.Cod.String() == codeNotFound {
				return nil, &model.CityNotFoundError{Query: city}
			}
			if errorResponse.Message != "" {
				err = fmt.Errorf("%w: %s", err, errorResponse.Message)
			}
		}
		return nil, transportError(ProviderOpenWeatherMap, err)
	}

	response := successResp.(*external.OpenWeatherCurrentResponse)
	switch response.Cod.String() {
	case codeOK:
	case codeNotFound:
		return nil, &model.CityNotFoundError{Query: city}
	default:
		return nil, transportError(ProviderOpenWeatherMap, fmt.Errorf("unexpected cod %q: %s", response.Cod, response.Message))
	}

	if response.Coord == nil {
		return nil, transportError(ProviderOpenWeatherMap, fmt.Errorf("response for %q has no coordinates", city))
	}

	return g.convertCurrentResponse(city, response), nil
}

// convertCurrentResponse converts the current weather response to an entity
func (g *openWeatherGatewayImpl) convertCurrentResponse(city string, response *external.OpenWeatherCurrentResponse) *entity.CurrentConditions {
	name := response.Name
	if name == "" {
		name = city
	}

	return &entity.CurrentConditions{
		Location: entity.Location{
			Query:   city,
			Name:    name,
			Country: response.Sys.Country,
			Coordinates: &entity.Coordinates{
				Latitude:  response.Coord.Lat,
				Longitude: response.Coord.Lon,
			},
			UTCOffsetSeconds: response.Timezone,
		},
		Temperature:   response.Main.Temp,
		FeelsLike:     response.Main.FeelsLike,
		Humidity:      response.Main.Humidity,
		WindSpeed:     response.Wind.Speed,
		Precipitation: response.Rain["1h"],
		Condition:     entity.ConditionFromOpenWeather(external.MainCondition(response.Weather)),
		ObservedAt:    response.Dt,
	}
}

// FetchForecast gets hourly and daily series from the One Call API
func (g *openWeatherGatewayImpl) FetchForecast(ctx context.Context, coordinates entity.Coordinates) (*entity.RawForecast, error) {
	if err := g.throttle.Wait(ctx); err != nil {
		return nil, transportError(ProviderOpenWeatherMap, err)
	}

	start := time.Now()
	successResp, errResp, _, err := g.httpClient.Request().
		WithContext(ctx).
		WithPath("/data/3.0/onecall").
		WithQueryParams(map[string]string{
			"lat":     formatCoordinate(coordinates.Latitude),
			"lon":     formatCoordinate(coordinates.Longitude),
			"exclude": "minutely,alerts",
		}).
		WithSuccessResp(&external.OpenWeatherOneCallResponse{}).
		WithErrorResp(&external.OpenWeatherErrorResponse{}).
		Execute()
	recordProviderRequest(g.metrics, ProviderOpenWeatherMap, start, err)

	if err != nil {
		if errResp != nil {
			errorResponse := errResp.(*external.OpenWeatherErrorResponse)
			if errorResponse.Message != "" {
				err = fmt.Errorf("%w: %s", err, errorResponse.Message)
			}
		}
		return nil, transportError(ProviderOpenWeatherMap, err)
	}

	return g.convertOneCallResponse(successResp.(*external.OpenWeatherOneCallResponse)), nil
}

// convertOneCallResponse converts the One Call response, skipping entries without temperatures
func (g *openWeatherGatewayImpl) convertOneCallResponse(response *external.OpenWeatherOneCallResponse) *entity.RawForecast {
	forecast := &entity.RawForecast{
		Provider:         ProviderOpenWeatherMap,
		UTCOffsetSeconds: response.TimezoneOffset,
	}

	for _, hourly := range response.Hourly {
		if hourly.Temp == nil {
			continue
		}
		forecast.Hourly = append(forecast.Hourly, entity.HourlySample{
			Timestamp:           hourly.Dt,
			Temperature:         *hourly.Temp,
			Condition:           entity.ConditionFromOpenWeather(external.MainCondition(hourly.Weather)),
			PrecipitationChance: percent(hourly.Pop),
		})
	}

	for _, daily := range response.Daily {
		if daily.Temp == nil {
			continue
		}
		forecast.Daily = append(forecast.Daily, entity.DailySample{
			Timestamp:           daily.Dt,
			Max:                 daily.Temp.Max,
			Min:                 daily.Temp.Min,
			Condition:           entity.ConditionFromOpenWeather(external.MainCondition(daily.Weather)),
			UVIndex:             daily.Uvi,
			PrecipitationChance: percent(daily.Pop),
		})
	}

	return forecast
}
