package providers

import (
	"context"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-favorites/internal/common"
	"github.com/i474232898/weather-favorites/internal/weather"
)

// GoogleGeocoder resolves place names through the Google Geocoding API.
// It yields at most one candidate.
type GoogleGeocoder struct{}

var _ weather.Geocoder = GoogleGeocoder{}

// NewGoogleGeocoder sets the package-level key used by kelvins/geocoder.
func NewGoogleGeocoder(apiKey string) GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return GoogleGeocoder{}
}

func (GoogleGeocoder) Geocode(ctx context.Context, name string, _ int) ([]weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		// The library reports "no match" as an error.
		if common.HasAnyFold(err.Error(), "zero_results", "empty results", "no results") {
			return nil, nil
		}
		return nil, err
	}

	return []weather.Coordinates{{
		Name:      name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}}, nil
}
