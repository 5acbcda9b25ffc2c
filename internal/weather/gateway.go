package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-favorites/internal/apperror"
	"github.com/i474232898/weather-favorites/internal/metrics"
)

const (
	// MaxGeocodeCandidates is how many matches are requested; the first wins.
	MaxGeocodeCandidates = 5
	DefaultForecastDays  = 7
	MaxForecastDays      = 16
)

var (
	ErrLocationNotFound      = errors.New("location not found")
	ErrUpstreamUnavailable   = errors.New("weather provider unavailable")
	ErrForecastRangeExceeded = errors.New("forecast range exceeded")
)

// Gateway maps coordinates to provider calls and returns normalized records
// or typed failures. Retries live in the provider transport, not here.
type Gateway struct {
	provider Provider
	geocoder Geocoder
	log      logrus.FieldLogger
}

// NewGateway creates a Gateway. A nil geocoder means the provider geocodes.
func NewGateway(provider Provider, geocoder Geocoder, log logrus.FieldLogger) *Gateway {
	if geocoder == nil {
		geocoder = provider
	}
	return &Gateway{
		provider: provider,
		geocoder: geocoder,
		log:      log.WithFields(logrus.Fields{"component": "weather", "provider": provider.Name()}),
	}
}

// Geocode resolves name to the first of up to MaxGeocodeCandidates matches.
// Both an empty candidate list and a failed call carry ErrLocationNotFound;
// only the latter is classified as an upstream failure.
func (g *Gateway) Geocode(ctx context.Context, name string) (Coordinates, error) {
	var candidates []Coordinates
	err := g.observe("geocode", func() (err error) {
		candidates, err = g.geocoder.Geocode(ctx, name, MaxGeocodeCandidates)
		return err
	})
	if err != nil {
		g.log.WithError(err).WithField("location", name).Error("geocoding failed")
		return Coordinates{}, apperror.NewUpstreamError("geocode",
			fmt.Errorf("%w: %w", ErrLocationNotFound, err))
	}
	if len(candidates) == 0 {
		return Coordinates{}, apperror.NewValidationError(
			fmt.Sprintf("Location '%s' not found.", name), ErrLocationNotFound)
	}
	return candidates[0], nil
}

// CurrentWeather fetches the snapshot at lat, lon.
func (g *Gateway) CurrentWeather(ctx context.Context, lat, lon float64) (CurrentWeather, error) {
	var cw CurrentWeather
	err := g.observe("current", func() (err error) {
		cw, err = g.provider.Current(ctx, lat, lon)
		return err
	})
	if err != nil {
		return CurrentWeather{}, g.unavailable("current weather", lat, lon, err)
	}
	return cw, nil
}

// Forecast returns days of daily forecast. Values below 1 are raised to 1;
// values above MaxForecastDays are rejected rather than truncated.
func (g *Gateway) Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyForecast, error) {
	if days > MaxForecastDays {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("Forecast days must be between 1 and %d.", MaxForecastDays), ErrForecastRangeExceeded)
	}
	if days < 1 {
		days = 1
	}

	var out []DailyForecast
	err := g.observe("forecast", func() (err error) {
		out, err = g.provider.Forecast(ctx, lat, lon, days)
		return err
	})
	if err != nil {
		return nil, g.unavailable("forecast", lat, lon, err)
	}
	return out, nil
}

// HistoricalWeather returns daily records for the closed interval
// [startDate, endDate]. Dates are expected to be validated by the caller.
func (g *Gateway) HistoricalWeather(ctx context.Context, lat, lon float64, startDate, endDate string) ([]DailyForecast, error) {
	var out []DailyForecast
	err := g.observe("historical", func() (err error) {
		out, err = g.provider.Historical(ctx, lat, lon, startDate, endDate)
		return err
	})
	if err != nil {
		return nil, g.unavailable("historical weather", lat, lon, err)
	}
	return out, nil
}

func (g *Gateway) observe(operation string, call func() error) error {
	start := time.Now()
	err := call()
	metrics.ObserveUpstream(g.provider.Name(), operation, err, time.Since(start))
	return err
}

func (g *Gateway) unavailable(what string, lat, lon float64, err error) error {
	g.log.WithError(err).WithFields(logrus.Fields{"lat": lat, "lon": lon}).Errorf("%s fetch failed", what)
	return apperror.NewUpstreamError(what, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err))
}
