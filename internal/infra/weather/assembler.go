package weather

import (
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"forecast-api/configs"
	"forecast-api/internal/domain/gateway/api"
	"forecast-api/internal/domain/usecase/forecast"
	"forecast-api/pkg/http"
	"forecast-api/pkg/log"
	"forecast-api/pkg/metrics"
	"forecast-api/pkg/redis"
)

const maxLoggedBody = 512

// NewAssembler wires the provider gateways selected by config into the forecast use case.
// redisClient is only required when the throttle mode is redis.
func NewAssembler(config *configs.AppConfig, redisClient *redis.Client, clock clockwork.Clock, collector *metrics.Collector) (forecast.UseCase, error) {
	openWeather, err := providerConfig(config, api.ProviderOpenWeatherMap, config.OpenWeatherMap, redisClient, collector)
	if err != nil {
		return nil, err
	}
	openMeteo, err := providerConfig(config, api.ProviderOpenMeteo, config.OpenMeteo, redisClient, collector)
	if err != nil {
		return nil, err
	}

	currentGateway := api.NewOpenWeatherCurrentGateway(openWeather)

	var forecastGateway api.ForecastGateway
	switch config.Forecast.Provider {
	case configs.ProviderOpenMeteo:
		forecastGateway = api.NewOpenMeteoForecastGateway(openMeteo)
	default:
		forecastGateway = api.NewOpenWeatherForecastGateway(openWeather)
	}

	var uvGateway api.UVIndexGateway
	if config.Forecast.UVEnabled {
		uvGateway = api.NewOpenMeteoUVIndexGateway(openMeteo)
	}

	log.Info("Forecast providers configured",
		zap.String("forecast_provider", forecastGateway.Name()),
		zap.Bool("uv_enabled", uvGateway != nil),
		zap.String("throttle", config.Throttle.Mode))

	return forecast.NewForecastUseCase(forecast.Options{
		HourlyLimit: config.Forecast.HourlyLimit,
		DailyLimit:  config.Forecast.DailyLimit,
		UVGrace:     config.Forecast.UVGrace,
		Clock:       clock,
		Metrics:     collector,
	}, currentGateway, forecastGateway, uvGateway), nil
}

func providerConfig(config *configs.AppConfig, name string, provider configs.ProviderConfig, redisClient *redis.Client, collector *metrics.Collector) (api.ProviderConfig, error) {
	throttle, err := newThrottle(config, name, redisClient)
	if err != nil {
		return api.ProviderConfig{}, err
	}

	return api.ProviderConfig{
		BaseURL: provider.BaseURL,
		APIKey:  provider.APIKey,
		ClientOptions: http.ClientOptions{
			ConnectionTimeout: provider.Timeout,
			ReadTimeout:       provider.Timeout,
			Logger:            http.ZapLogger{Name: name, MaxBody: maxLoggedBody},
		},
		Throttle: throttle,
		Metrics:  collector,
	}, nil
}

// newThrottle builds one throttle per provider so their budgets stay independent
func newThrottle(config *configs.AppConfig, provider string, redisClient *redis.Client) (api.Throttle, error) {
	switch config.Throttle.Mode {
	case configs.ThrottleNone:
		return api.NewNoopThrottle(), nil
	case configs.ThrottleLocal:
		return api.NewLocalThrottle(config.Throttle.RequestsPerSecond, config.Throttle.Burst), nil
	case configs.ThrottleRedis:
		if redisClient == nil {
			return nil, errors.New("redis throttle requires a redis client")
		}
		// a fractional per-second rate only bounds the minute window
		options := redis.NewQuotaOptions().
			WithMaxPerSecond(int(config.Throttle.RequestsPerSecond)).
			WithMaxPerMinute(config.Throttle.MaxPerMinute).
			WithWaitOnLimit(true, config.Throttle.WaitTimeout).
			WithNamespace(config.ApplicationName + ":quota")
		quota, err := redis.NewQuota(redisClient, provider, options)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s quota: %w", provider, err)
		}
		return api.NewQuotaThrottle(quota), nil
	default:
		return nil, fmt.Errorf("unknown throttle mode %q", config.Throttle.Mode)
	}
}
