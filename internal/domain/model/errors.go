package model

import (
	"errors"
	"fmt"
)

// Error kinds used as metric labels and in snapshots
const (
	KindCityNotFound        = "city_not_found"
	KindTransport           = "transport"
	KindForecastUnavailable = "forecast_unavailable"
	KindIncompleteData      = "incomplete_data"
	KindInvalidArgument     = "invalid_argument"
	KindUnknown             = "unknown"
)

var (
	// ErrIncompleteData signals an internal invariant violation while merging
	ErrIncompleteData = errors.New("incomplete data: current conditions are required")

	// ErrEmptyCity is returned when the trimmed city name is empty
	ErrEmptyCity = errors.New("city name is required")
)

// CityNotFoundError is returned when the provider does not know the queried city
type CityNotFoundError struct {
	Query string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city not found: %q", e.Query)
}

// TransportError covers network failures, unexpected statuses and undecodable bodies
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ForecastUnavailableError is returned when the forecast fetch fails after current conditions succeeded
type ForecastUnavailableError struct {
	City string
	Err  error
}

func (e *ForecastUnavailableError) Error() string {
	return fmt.Sprintf("forecast unavailable for %s: %v", e.City, e.Err)
}

func (e *ForecastUnavailableError) Unwrap() error {
	return e.Err
}

// ErrorKind returns the stable label of err. ForecastUnavailable wins over the
// transport error it usually wraps.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var notFound *CityNotFoundError
	var unavailable *ForecastUnavailableError
	var transport *TransportError

	switch {
	case errors.As(err, &notFound):
		return KindCityNotFound
	case errors.As(err, &unavailable):
		return KindForecastUnavailable
	case errors.Is(err, ErrIncompleteData):
		return KindIncompleteData
	case errors.Is(err, ErrEmptyCity):
		return KindInvalidArgument
	case errors.As(err, &transport):
		return KindTransport
	default:
		return KindUnknown
	}
}
