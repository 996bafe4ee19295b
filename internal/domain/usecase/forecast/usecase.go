package forecast

import (
	"context"

	"forecast-api/internal/domain/entity"
)

// Forecast is the normalized output of a forecast fetch
type Forecast struct {
	Provider         string
	UTCOffsetSeconds int
	Hourly           []entity.HourlySample
	Daily            []entity.DailySample
	UVIndex          entity.UVIndex
}

type UseCase interface {
	// LookupCurrent resolves a trimmed, non-empty city name to its current conditions and coordinates
	LookupCurrent(ctx context.Context, city string) (*entity.CurrentConditions, error)

	// FetchForecast retrieves the hourly and daily series for the coordinates of current,
	// with the UV index looked up concurrently
	FetchForecast(ctx context.Context, current *entity.CurrentConditions) (*Forecast, error)

	// Assemble runs a full fetch cycle: lookup, forecast fetch, then merge
	Assemble(ctx context.Context, city string) (*entity.ForecastViewModel, error)
}
