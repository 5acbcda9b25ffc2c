package weather

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Coordinates is one geocoding candidate.
type Coordinates struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather is a single point-in-time snapshot, metric units.
type CurrentWeather struct {
	Time          string    `json:"time"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windspeed"`
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"condition"`
}

// DailyForecast is one day of forecast or historical data. Durations are
// seconds, temperatures °C, precipitation mm, wind km/h.
// PrecipitationProbabilityMax is nil when the source has no probability
// (historical archives).
type DailyForecast struct {
	Date                        string   `json:"date"`
	TemperatureMax              float64  `json:"temperature_max"`
	TemperatureMin              float64  `json:"temperature_min"`
	ApparentTemperatureMax      float64  `json:"apparent_temperature_max"`
	ApparentTemperatureMin      float64  `json:"apparent_temperature_min"`
	DaylightDuration            float64  `json:"daylight_duration"`
	PrecipitationSum            float64  `json:"precipitation_sum"`
	PrecipitationProbabilityMax *float64 `json:"precipitation_probability_max"`
	WindSpeedMax                float64  `json:"wind_speed_max"`
}
