package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/gateway/api"
	"forecast-api/internal/domain/model"
	"forecast-api/pkg/log"
	"forecast-api/pkg/metrics"
)

const (
	DefaultHourlyLimit = 12
	DefaultDailyLimit  = 7
	DefaultUVGrace     = 500 * time.Millisecond
)

// Options tunes series truncation and how long the UV index may lag behind the forecast
type Options struct {
	HourlyLimit int
	DailyLimit  int
	UVGrace     time.Duration
	Clock       clockwork.Clock
	Metrics     *metrics.Collector
}

type forecastUseCase struct {
	hourlyLimit     int
	dailyLimit      int
	uvGrace         time.Duration
	clock           clockwork.Clock
	metrics         *metrics.Collector
	currentGateway  api.CurrentWeatherGateway
	forecastGateway api.ForecastGateway
	uvGateway       api.UVIndexGateway
}

// NewForecastUseCase creates the assembler. uvGateway may be nil, in which case the UV index is always unavailable.
func NewForecastUseCase(options Options, currentGateway api.CurrentWeatherGateway, forecastGateway api.ForecastGateway, uvGateway api.UVIndexGateway) UseCase {
	if options.HourlyLimit < 1 {
		options.HourlyLimit = DefaultHourlyLimit
	}
	if options.DailyLimit < 1 {
		options.DailyLimit = DefaultDailyLimit
	}
	if options.UVGrace <= 0 {
		options.UVGrace = DefaultUVGrace
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}

	return &forecastUseCase{
		hourlyLimit:     options.HourlyLimit,
		dailyLimit:      options.DailyLimit,
		uvGrace:         options.UVGrace,
		clock:           options.Clock,
		metrics:         options.Metrics,
		currentGateway:  currentGateway,
		forecastGateway: forecastGateway,
		uvGateway:       uvGateway,
	}
}

// LookupCurrent resolves a city name to its current conditions
func (uc *forecastUseCase) LookupCurrent(ctx context.Context, city string) (*entity.CurrentConditions, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, model.ErrEmptyCity
	}

	current, err := uc.currentGateway.FindCurrentByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to look up current weather: %w", err)
	}

	log.Debug("Current conditions resolved",
		zap.String("city", city),
		zap.String("name", current.Location.Name),
		zap.Float64("temperature", current.Temperature))
	return current, nil
}

// FetchForecast fetches the forecast series and the UV index in parallel
func (uc *forecastUseCase) FetchForecast(ctx context.Context, current *entity.CurrentConditions) (*Forecast, error) {
	if current == nil || current.Location.Coordinates == nil {
		return nil, fmt.Errorf("forecast fetch needs coordinates: %w", model.ErrIncompleteData)
	}

	raw, forecastErr, uvIndex, uvErr := uc.fetchForecastAndUVInParallel(ctx, *current.Location.Coordinates)

	// Forecast is mandatory, the UV index is optional
	if forecastErr != nil {
		return nil, &model.ForecastUnavailableError{City: current.Location.Name, Err: forecastErr}
	}

	uv := entity.UVIndexOf(uvIndex)
	if uvErr != nil {
		log.Warn("UV index unavailable",
			zap.String("city", current.Location.Name),
			zap.Error(uvErr))
		uv = entity.UVIndexUnavailable()
		if uc.metrics != nil {
			uc.metrics.RecordUVUnavailable()
		}
	}

	location := current.Location
	if raw.UTCOffsetSeconds != nil {
		location.UTCOffsetSeconds = *raw.UTCOffsetSeconds
	}
	zone := location.TimeZone()
	now := uc.clock.Now()

	return &Forecast{
		Provider:         raw.Provider,
		UTCOffsetSeconds: location.UTCOffsetSeconds,
		Hourly:           truncateHourly(current, raw.Hourly, now, zone, uc.hourlyLimit),
		Daily:            normalizeDaily(raw.Daily, now, zone, uc.dailyLimit),
		UVIndex:          uv,
	}, nil
}

type forecastResult struct {
	raw *entity.RawForecast
	err error
}

type uvResult struct {
	value float64
	err   error
}

// fetchForecastAndUVInParallel issues the forecast and UV index calls in parallel.
// Once the forecast is in, the UV call gets uvGrace more before it is reported as not ready;
// a late UV call keeps running on ctx and its result is dropped.
func (uc *forecastUseCase) fetchForecastAndUVInParallel(ctx context.Context, coordinates entity.Coordinates) (*entity.RawForecast, error, float64, error) {
	forecastCh := make(chan forecastResult, 1)
	go func() {
		raw, err := uc.forecastGateway.FetchForecast(ctx, coordinates)
		if err == nil && raw == nil {
			err = fmt.Errorf("%s returned no forecast", uc.forecastGateway.Name())
		}
		forecastCh <- forecastResult{raw: raw, err: err}
	}()

	if uc.uvGateway == nil {
		result := <-forecastCh
		return result.raw, result.err, 0, errors.New("uv index lookup disabled")
	}

	uvCh := make(chan uvResult, 1)
	go func() {
		value, err := uc.uvGateway.FindUVIndex(ctx, coordinates)
		uvCh <- uvResult{value: value, err: err}
	}()

	result := <-forecastCh
	if result.err != nil {
		return result.raw, result.err, 0, nil
	}

	select {
	case uv := <-uvCh:
		return result.raw, nil, uv.value, uv.err
	default:
	}

	select {
	case uv := <-uvCh:
		return result.raw, nil, uv.value, uv.err
	case <-uc.clock.After(uc.uvGrace):
		return result.raw, nil, 0, fmt.Errorf("uv index not ready %s after the forecast", uc.uvGrace)
	case <-ctx.Done():
		return result.raw, nil, 0, ctx.Err()
	}
}

// Assemble runs lookup, forecast fetch and merge strictly in sequence
func (uc *forecastUseCase) Assemble(ctx context.Context, city string) (*entity.ForecastViewModel, error) {
	current, err := uc.LookupCurrent(ctx, city)
	if err != nil {
		return nil, err
	}

	forecast, err := uc.FetchForecast(ctx, current)
	if err != nil {
		return nil, err
	}

	viewModel, err := Merge(current, forecast.Hourly, forecast.Daily, forecast.UVIndex, forecast.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to merge view-model: %w", err)
	}

	log.Info("Forecast assembled",
		zap.String("city", current.Location.Name),
		zap.String("provider", forecast.Provider),
		zap.Int("hourly", len(viewModel.Hourly)),
		zap.Int("daily", len(viewModel.Daily)),
		zap.Stringer("uv_index", viewModel.UVIndex))
	return viewModel, nil
}
