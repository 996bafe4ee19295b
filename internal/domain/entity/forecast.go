package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Coordinates in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Location is the place a fetch cycle was requested for
type Location struct {
	Query            string       `json:"query"`
	Name             string       `json:"name"`
	Country          string       `json:"country,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	UTCOffsetSeconds int          `json:"utcOffsetSeconds"`
}

// TimeZone returns a fixed zone for the location's UTC offset
func (l Location) TimeZone() *time.Location {
	return time.FixedZone(l.Name, l.UTCOffsetSeconds)
}

type CurrentConditions struct {
	Location      Location  `json:"location"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      int       `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"condition"`
	ObservedAt    int64     `json:"observedAt"`
}

type HourlySample struct {
	Timestamp           int64     `json:"timestamp"`
	Temperature         float64   `json:"temperature"`
	Condition           Condition `json:"condition"`
	PrecipitationChance *int      `json:"precipitationChance,omitempty"`
}

type DailySample struct {
	Date                string    `json:"date"`
	Timestamp           int64     `json:"timestamp"`
	Max                 float64   `json:"max"`
	Min                 float64   `json:"min"`
	Condition           Condition `json:"condition"`
	UVIndex             *float64  `json:"uvIndex,omitempty"`
	PrecipitationChance *int      `json:"precipitationChance,omitempty"`
}

// RawForecast is a provider's hourly and daily series before normalization
type RawForecast struct {
	Provider string
	// UTCOffsetSeconds is set when the provider reports the location's offset itself
	UTCOffsetSeconds *int
	Hourly           []HourlySample
	Daily            []DailySample
}

const uvUnavailable = "unavailable"

// UVIndex is either a measured value or explicitly unavailable
type UVIndex struct {
	Value     float64
	Available bool
}

// UVIndexOf returns an available UV index
func UVIndexOf(value float64) UVIndex {
	return UVIndex{Value: value, Available: true}
}

// UVIndexUnavailable returns the marker used when the UV lookup failed
func UVIndexUnavailable() UVIndex {
	return UVIndex{}
}

func (u UVIndex) String() string {
	if !u.Available {
		return uvUnavailable
	}
	return strconv.FormatFloat(u.Value, 'f', -1, 64)
}

func (u UVIndex) MarshalJSON() ([]byte, error) {
	if !u.Available {
		return json.Marshal(uvUnavailable)
	}
	return json.Marshal(u.Value)
}

func (u *UVIndex) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*u = UVIndexUnavailable()
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if text != uvUnavailable {
			return fmt.Errorf("invalid uv index %q", text)
		}
		*u = UVIndexUnavailable()
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid uv index: %w", err)
	}
	*u = UVIndexOf(value)
	return nil
}

// ForecastViewModel is the only artifact handed to the presentation layer
type ForecastViewModel struct {
	Current      CurrentConditions `json:"current"`
	Temperature  int               `json:"temperature"`
	FeelsLike    int               `json:"feelsLike"`
	Hourly       []HourlySample    `json:"hourly"`
	Daily        []DailySample     `json:"daily"`
	UVIndex      UVIndex           `json:"uvIndex"`
	ChanceOfRain *int              `json:"chanceOfRain,omitempty"`
	Provider     string            `json:"provider"`
}

// Clone returns a deep copy so readers never share slices with the pipeline
func (vm *ForecastViewModel) Clone() *ForecastViewModel {
	if vm == nil {
		return nil
	}

	clone := *vm
	if vm.Current.Location.Coordinates != nil {
		coordinates := *vm.Current.Location.Coordinates
		clone.Current.Location.Coordinates = &coordinates
	}
	clone.Hourly = slices.Clone(vm.Hourly)
	clone.Daily = slices.Clone(vm.Daily)
	if vm.ChanceOfRain != nil {
		chance := *vm.ChanceOfRain
		clone.ChanceOfRain = &chance
	}
	return &clone
}
