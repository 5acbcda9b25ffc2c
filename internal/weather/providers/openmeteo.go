package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-favorites/internal/weather"
)

const (
	DefaultOpenMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultOpenMeteoArchiveURL   = "https://archive-api.open-meteo.com/v1/archive"
	DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

const (
	currentVariables       = "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation,weather_code"
	forecastDailyVariables = "temperature_2m_max,temperature_2m_min,apparent_temperature_max,apparent_temperature_min," +
		"daylight_duration,precipitation_sum,precipitation_probability_max,wind_speed_10m_max"
	// The archive has no precipitation probability.
	archiveDailyVariables = "temperature_2m_max,temperature_2m_min,apparent_temperature_max,apparent_temperature_min," +
		"daylight_duration,precipitation_sum,wind_speed_10m_max"
)

// OpenMeteoConfig holds endpoints and transport settings. Empty URLs fall
// back to the public Open-Meteo endpoints.
type OpenMeteoConfig struct {
	ForecastURL  string
	ArchiveURL   string
	GeocodingURL string
	// APIKey is only needed for the commercial endpoints.
	APIKey string
	HTTP   HTTPClientConfig
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	cfg     OpenMeteoConfig
	httpCfg HTTPClientConfig

	forecastCB  *gobreaker.CircuitBreaker
	archiveCB   *gobreaker.CircuitBreaker
	geocodingCB *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*OpenMeteoProvider)(nil)

func NewOpenMeteoProvider(cfg OpenMeteoConfig) *OpenMeteoProvider {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultOpenMeteoForecastURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultOpenMeteoArchiveURL
	}
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = DefaultOpenMeteoGeocodingURL
	}
	httpCfg := cfg.HTTP
	if httpCfg.Client == nil {
		httpCfg = DefaultHTTPClientConfig()
	}

	return &OpenMeteoProvider{
		name:        "openmeteo",
		cfg:         cfg,
		httpCfg:     httpCfg,
		forecastCB:  newCircuitBreaker("openmeteo-forecast"),
		archiveCB:   newCircuitBreaker("openmeteo-archive"),
		geocodingCB: newCircuitBreaker("openmeteo-geocoding"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Geocode implements weather.Geocoder. Open-Meteo omits "results" entirely
// when nothing matches.
func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string, limit int) ([]weather.Coordinates, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(limit))
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := getJSON(ctx, p.httpCfg, p.geocodingCB, p.endpoint(p.cfg.GeocodingURL, values), &payload); err != nil {
		return nil, err
	}

	out := make([]weather.Coordinates, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, weather.Coordinates{
			Name:      r.Name,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return out, nil
}

func (p *OpenMeteoProvider) Current(ctx context.Context, lat, lon float64) (weather.CurrentWeather, error) {
	values := coordinateValues(lat, lon)
	values.Set("current", currentVariables)
	values.Set("timezone", "auto")

	var payload struct {
		Current struct {
			Time          string  `json:"time"`
			Temperature   float64 `json:"temperature_2m"`
			Humidity      float64 `json:"relative_humidity_2m"`
			WindSpeed     float64 `json:"wind_speed_10m"`
			Precipitation float64 `json:"precipitation"`
			WeatherCode   int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.httpCfg, p.forecastCB, p.endpoint(p.cfg.ForecastURL, values), &payload); err != nil {
		return weather.CurrentWeather{}, err
	}
	if payload.Current.Time == "" {
		return weather.CurrentWeather{}, fmt.Errorf("openmeteo: response has no current block")
	}

	return weather.CurrentWeather{
		Time:          payload.Current.Time,
		Temperature:   payload.Current.Temperature,
		Humidity:      payload.Current.Humidity,
		WindSpeed:     payload.Current.WindSpeed,
		Precipitation: payload.Current.Precipitation,
		Condition:     mapOpenMeteoCondition(payload.Current.WeatherCode),
	}, nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, lat, lon float64, days int) ([]weather.DailyForecast, error) {
	values := coordinateValues(lat, lon)
	values.Set("daily", forecastDailyVariables)
	values.Set("forecast_days", strconv.Itoa(days))
	values.Set("timezone", "auto")

	var payload dailyPayload
	if err := getJSON(ctx, p.httpCfg, p.forecastCB, p.endpoint(p.cfg.ForecastURL, values), &payload); err != nil {
		return nil, err
	}
	return payload.Daily.records(true), nil
}

func (p *OpenMeteoProvider) Historical(ctx context.Context, lat, lon float64, startDate, endDate string) ([]weather.DailyForecast, error) {
	values := coordinateValues(lat, lon)
	values.Set("daily", archiveDailyVariables)
	values.Set("start_date", startDate)
	values.Set("end_date", endDate)
	values.Set("timezone", "auto")

	var payload dailyPayload
	if err := getJSON(ctx, p.httpCfg, p.archiveCB, p.endpoint(p.cfg.ArchiveURL, values), &payload); err != nil {
		return nil, err
	}
	return payload.Daily.records(false), nil
}

func (p *OpenMeteoProvider) endpoint(base string, values url.Values) string {
	if p.cfg.APIKey != "" {
		values.Set("apikey", p.cfg.APIKey)
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + values.Encode()
}

func coordinateValues(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	return values
}

type dailyPayload struct {
	Daily dailyColumns `json:"daily"`
}

// dailyColumns is the column-oriented daily block. Any cell may be null.
type dailyColumns struct {
	Time                        []string   `json:"time"`
	TemperatureMax              []*float64 `json:"temperature_2m_max"`
	TemperatureMin              []*float64 `json:"temperature_2m_min"`
	ApparentTemperatureMax      []*float64 `json:"apparent_temperature_max"`
	ApparentTemperatureMin      []*float64 `json:"apparent_temperature_min"`
	DaylightDuration            []*float64 `json:"daylight_duration"`
	PrecipitationSum            []*float64 `json:"precipitation_sum"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	WindSpeedMax                []*float64 `json:"wind_speed_10m_max"`
}

// records pivots the columns into one record per day.
func (d dailyColumns) records(withProbability bool) []weather.DailyForecast {
	out := make([]weather.DailyForecast, 0, len(d.Time))
	for i, date := range d.Time {
		rec := weather.DailyForecast{
			Date:                   date,
			TemperatureMax:         cell(d.TemperatureMax, i),
			TemperatureMin:         cell(d.TemperatureMin, i),
			ApparentTemperatureMax: cell(d.ApparentTemperatureMax, i),
			ApparentTemperatureMin: cell(d.ApparentTemperatureMin, i),
			DaylightDuration:       cell(d.DaylightDuration, i),
			PrecipitationSum:       cell(d.PrecipitationSum, i),
			WindSpeedMax:           cell(d.WindSpeedMax, i),
		}
		if withProbability && i < len(d.PrecipitationProbabilityMax) {
			rec.PrecipitationProbabilityMax = d.PrecipitationProbabilityMax[i]
		}
		out = append(out, rec)
	}
	return out
}

func cell(col []*float64, i int) float64 {
	if i >= len(col) || col[i] == nil {
		return 0
	}
	return *col[i]
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// WMO weather interpretation codes.
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
