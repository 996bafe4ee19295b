package entity

import "strings"

// Condition is the weather state driving icon and label selection in presentation
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionOther        Condition = "Other"
	ConditionUnknown      Condition = "Unknown"
)

// ConditionFromOpenWeather maps the OpenWeatherMap weather group (weather[].main)
func ConditionFromOpenWeather(main string) Condition {
	switch strings.TrimSpace(main) {
	case "":
		return ConditionUnknown
	case "Clear":
		return ConditionClear
	case "Clouds":
		return ConditionClouds
	case "Rain", "Drizzle":
		return ConditionRain
	case "Thunderstorm":
		return ConditionThunderstorm
	default:
		return ConditionOther
	}
}

// ConditionFromWMO maps a WMO weather interpretation code as returned by Open-Meteo.
// A nil code means the provider left it out.
func ConditionFromWMO(code *int) Condition {
	if code == nil {
		return ConditionUnknown
	}

	switch c := *code; {
	case c == 0:
		return ConditionClear
	case c >= 1 && c <= 3:
		return ConditionClouds
	case c >= 51 && c <= 67, c >= 80 && c <= 82:
		return ConditionRain
	case c == 95, c == 96, c == 99:
		return ConditionThunderstorm
	case c == 45, c == 48, c >= 71 && c <= 77, c == 85, c == 86:
		return ConditionOther
	default:
		return ConditionUnknown
	}
}
