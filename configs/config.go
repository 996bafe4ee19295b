package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"forecast-api/pkg/resource"
)

const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderOpenMeteo      = "open-meteo"

	ThrottleNone  = "none"
	ThrottleLocal = "local"
	ThrottleRedis = "redis"
)

var ErrMissingAPIKey = errors.New("openweathermap api key is not configured")

type ServerConfig struct {
	Port        int
	ContextPath string
}

type ForecastConfig struct {
	Provider     string
	DefaultCity  string
	HourlyLimit  int
	DailyLimit   int
	CycleTimeout time.Duration
	UVEnabled    bool
	UVGrace      time.Duration
}

type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type ThrottleConfig struct {
	Mode              string
	RequestsPerSecond float64
	Burst             int
	MaxPerMinute      int
	WaitTimeout       time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	Database int
}

// AppConfig is the typed view over application.yml
type AppConfig struct {
	ApplicationName string
	Server          ServerConfig
	Forecast        ForecastConfig
	OpenWeatherMap  ProviderConfig
	OpenMeteo       ProviderConfig
	Throttle        ThrottleConfig
	Redis           RedisConfig
}

// Load reads the loaded properties into an AppConfig and validates it
func Load() (*AppConfig, error) {
	config := &AppConfig{
		ApplicationName: resource.GetStringOrDefault("app.name", "forecast-api"),
		Server: ServerConfig{
			Port:        resource.GetIntOrDefault("app.server.port", 8080),
			ContextPath: resource.GetString("app.server.context-path"),
		},
		Forecast: ForecastConfig{
			Provider:     strings.ToLower(resource.GetStringOrDefault("app.forecast.provider", ProviderOpenWeatherMap)),
			DefaultCity:  strings.TrimSpace(resource.GetString("app.forecast.default-city")),
			HourlyLimit:  resource.GetIntOrDefault("app.forecast.hourly-limit", 12),
			DailyLimit:   resource.GetIntOrDefault("app.forecast.daily-limit", 7),
			CycleTimeout: resource.GetDurationOrDefault("app.forecast.cycle-timeout", 10*time.Second),
			UVEnabled:    !resource.IsSet("app.forecast.uv-enabled") || resource.GetBool("app.forecast.uv-enabled"),
			UVGrace:      resource.GetDurationOrDefault("app.forecast.uv-grace", 500*time.Millisecond),
		},
		OpenWeatherMap: ProviderConfig{
			BaseURL: resource.GetStringOrDefault("app.providers.openweathermap.base-url", "https://api.openweathermap.org"),
			APIKey:  strings.TrimSpace(resource.GetString("app.providers.openweathermap.api-key")),
			Timeout: resource.GetDurationOrDefault("app.providers.openweathermap.timeout", 5*time.Second),
		},
		OpenMeteo: ProviderConfig{
			BaseURL: resource.GetStringOrDefault("app.providers.open-meteo.base-url", "https://api.open-meteo.com"),
			Timeout: resource.GetDurationOrDefault("app.providers.open-meteo.timeout", 5*time.Second),
		},
		Throttle: ThrottleConfig{
			Mode:              strings.ToLower(resource.GetStringOrDefault("app.throttle.mode", ThrottleLocal)),
			RequestsPerSecond: resource.GetFloat64("app.throttle.requests-per-second"),
			Burst:             resource.GetIntOrDefault("app.throttle.burst", 1),
			MaxPerMinute:      resource.GetInt("app.throttle.max-per-minute"),
			WaitTimeout:       resource.GetDurationOrDefault("app.throttle.wait-timeout", 3*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  resource.GetBool("app.redis.enabled"),
			Host:     resource.GetStringOrDefault("app.redis.host", "localhost"),
			Port:     resource.GetIntOrDefault("app.redis.port", 6379),
			Password: resource.GetString("app.redis.password"),
			Database: resource.GetInt("app.redis.database"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports the first configuration error, the missing API key included
func (c *AppConfig) Validate() error {
	if c.OpenWeatherMap.APIKey == "" {
		return ErrMissingAPIKey
	}

	switch c.Forecast.Provider {
	case ProviderOpenWeatherMap, ProviderOpenMeteo:
	default:
		return fmt.Errorf("unknown forecast provider %q", c.Forecast.Provider)
	}

	switch c.Throttle.Mode {
	case ThrottleNone:
	case ThrottleLocal:
		if c.Throttle.RequestsPerSecond <= 0 {
			return fmt.Errorf("throttle requests-per-second must be positive, got %v", c.Throttle.RequestsPerSecond)
		}
	case ThrottleRedis:
		if !c.Redis.Enabled {
			return errors.New("throttle mode redis requires app.redis.enabled")
		}
		if c.Throttle.MaxPerMinute <= 0 {
			return fmt.Errorf("throttle max-per-minute must be positive, got %d", c.Throttle.MaxPerMinute)
		}
	default:
		return fmt.Errorf("unknown throttle mode %q", c.Throttle.Mode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
