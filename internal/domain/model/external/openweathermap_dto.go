package external

import "encoding/json"

// OpenWeatherCurrentResponse represents the response from the current weather API (/data/2.5/weather)
type OpenWeatherCurrentResponse struct {
	Coord    *OpenWeatherCoord         `json:"coord"`
	Weather  []OpenWeatherConditionDTO `json:"weather"`
	Main     OpenWeatherMainDTO        `json:"main"`
	Wind     OpenWeatherWindDTO        `json:"wind"`
	Rain     map[string]float64        `json:"rain"`
	Dt       int64                     `json:"dt"`
	Sys      OpenWeatherSysDTO         `json:"sys"`
	Timezone int                       `json:"timezone"`
	Name     string                    `json:"name"`
	Cod      json.Number               `json:"cod"`
	Message  string                    `json:"message"`
}

// OpenWeatherCoord holds coordinates in decimal degrees
type OpenWeatherCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OpenWeatherConditionDTO represents a weather group entry
type OpenWeatherConditionDTO struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// OpenWeatherMainDTO holds temperatures and humidity
type OpenWeatherMainDTO struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
}

// OpenWeatherWindDTO holds wind data
type OpenWeatherWindDTO struct {
	Speed float64 `json:"speed"`
}

// OpenWeatherSysDTO holds location metadata
type OpenWeatherSysDTO struct {
	Country string `json:"country"`
}

// OpenWeatherOneCallResponse represents the response from the One Call API (/data/3.0/onecall)
type OpenWeatherOneCallResponse struct {
	Lat            float64                `json:"lat"`
	Lon            float64                `json:"lon"`
	Timezone       string                 `json:"timezone"`
	TimezoneOffset *int                   `json:"timezone_offset"`
	Hourly         []OpenWeatherHourlyDTO `json:"hourly"`
	Daily          []OpenWeatherDailyDTO  `json:"daily"`
}

// OpenWeatherHourlyDTO represents an hourly forecast entry
type OpenWeatherHourlyDTO struct {
	Dt      int64                     `json:"dt"`
	Temp    *float64                  `json:"temp"`
	Uvi     *float64                  `json:"uvi"`
	Pop     *float64                  `json:"pop"`
	Weather []OpenWeatherConditionDTO `json:"weather"`
}

// OpenWeatherDailyDTO represents a daily forecast entry
type OpenWeatherDailyDTO struct {
	Dt      int64                     `json:"dt"`
	Temp    *OpenWeatherDailyTempDTO  `json:"temp"`
	Uvi     *float64                  `json:"uvi"`
	Pop     *float64                  `json:"pop"`
	Weather []OpenWeatherConditionDTO `json:"weather"`
}

// OpenWeatherDailyTempDTO holds the daily temperature range
type OpenWeatherDailyTempDTO struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// OpenWeatherErrorResponse represents error responses from OpenWeatherMap.
// cod is a number on some endpoints and a string on others.
type OpenWeatherErrorResponse struct {
	Cod     json.Number `json:"cod"`
	Message string      `json:"message"`
}

// MainCondition returns the first weather group, or empty when absent
func MainCondition(weather []OpenWeatherConditionDTO) string {
	if len(weather) == 0 {
		return ""
	}
	return weather[0].Main
}
