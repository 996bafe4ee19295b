package external

// OpenMeteoForecastResponse represents the response from the forecast API with timeformat=unixtime.
// Every series may be missing entirely or contain nulls.
type OpenMeteoForecastResponse struct {
	Latitude         float64                `json:"latitude"`
	Longitude        float64                `json:"longitude"`
	Timezone         string                 `json:"timezone"`
	UTCOffsetSeconds *int                   `json:"utc_offset_seconds"`
	Hourly           *OpenMeteoHourlyDTO    `json:"hourly"`
	Daily            *OpenMeteoDailyDTO     `json:"daily"`
	Current          *OpenMeteoCurrentUVDTO `json:"current"`
}

// OpenMeteoHourlyDTO holds parallel hourly series
type OpenMeteoHourlyDTO struct {
	Time                     []int64    `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	WeatherCode              []*float64 `json:"weather_code"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
}

// OpenMeteoDailyDTO holds parallel daily series
type OpenMeteoDailyDTO struct {
	Time                        []int64    `json:"time"`
	TemperatureMax              []*float64 `json:"temperature_2m_max"`
	TemperatureMin              []*float64 `json:"temperature_2m_min"`
	WeatherCode                 []*float64 `json:"weather_code"`
	UVIndexMax                  []*float64 `json:"uv_index_max"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
}

// OpenMeteoCurrentUVDTO holds the current UV index requested with current=uv_index
type OpenMeteoCurrentUVDTO struct {
	Time    int64    `json:"time"`
	UVIndex *float64 `json:"uv_index"`
}

// OpenMeteoErrorResponse represents error responses from Open-Meteo
type OpenMeteoErrorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// ValueAt returns series[i] when present and non-null
func ValueAt(series []*float64, i int) *float64 {
	if i < 0 || i >= len(series) {
		return nil
	}
	return series[i]
}
