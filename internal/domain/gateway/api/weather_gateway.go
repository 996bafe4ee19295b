package api

import (
	"context"

	"forecast-api/internal/domain/entity"
)

// CurrentWeatherGateway resolves a free-text city to its current conditions
type CurrentWeatherGateway interface {
	// FindCurrentByCity looks up the current conditions, coordinates and UTC offset of a city.
	// Returns *model.CityNotFoundError when the provider does not know the city
	// and *model.TransportError for any other failure.
	FindCurrentByCity(ctx context.Context, city string) (*entity.CurrentConditions, error)
}

// ForecastGateway retrieves hourly and daily series for coordinates
type ForecastGateway interface {
	// Name identifies the provider in logs, metrics and the view-model
	Name() string

	// FetchForecast returns the provider's series unfiltered; normalization is up to the caller
	FetchForecast(ctx context.Context, coordinates entity.Coordinates) (*entity.RawForecast, error)
}

// UVIndexGateway retrieves the current UV index for coordinates
type UVIndexGateway interface {
	FindUVIndex(ctx context.Context, coordinates entity.Coordinates) (float64, error)
}
