package weather

import "context"

// Geocoder resolves free-text place names to candidate coordinates.
type Geocoder interface {
	// Geocode returns at most limit candidates, best match first. An empty
	// slice with a nil error means the provider knows no such place.
	Geocode(ctx context.Context, name string, limit int) ([]Coordinates, error)
}

// Provider abstracts a weather data source. Implementations return
// normalized shapes; provider-specific payloads never leave them.
type Provider interface {
	Geocoder

	Name() string
	Current(ctx context.Context, lat, lon float64) (CurrentWeather, error)
	Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyForecast, error)
	Historical(ctx context.Context, lat, lon float64, startDate, endDate string) ([]DailyForecast, error)
}
