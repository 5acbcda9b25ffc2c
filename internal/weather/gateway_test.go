package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weather-favorites/internal/apperror"
	"github.com/i474232898/weather-favorites/internal/logging"
)

type stubProvider struct {
	candidates []Coordinates
	err        error
	lastDays   int
	lastLimit  int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Geocode(_ context.Context, _ string, limit int) ([]Coordinates, error) {
	p.lastLimit = limit
	return p.candidates, p.err
}

func (p *stubProvider) Current(context.Context, float64, float64) (CurrentWeather, error) {
	if p.err != nil {
		return CurrentWeather{}, p.err
	}
	return CurrentWeather{Time: "2024-01-01T12:00", Temperature: 21.5, Condition: ConditionClear}, nil
}

func (p *stubProvider) Forecast(_ context.Context, _, _ float64, days int) ([]DailyForecast, error) {
	p.lastDays = days
	if p.err != nil {
		return nil, p.err
	}
	return make([]DailyForecast, days), nil
}

func (p *stubProvider) Historical(_ context.Context, _, _ float64, start, end string) ([]DailyForecast, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []DailyForecast{{Date: start}, {Date: end}}, nil
}

func TestForecastDayBounds(t *testing.T) {
	p := &stubProvider{}
	g := NewGateway(p, nil, logging.Discard())
	ctx := context.Background()

	_, err := g.Forecast(ctx, 48.85, 2.35, 17)
	if !errors.Is(err, ErrForecastRangeExceeded) || !apperror.IsValidation(err) {
		t.Fatalf("expected range exceeded, got %v", err)
	}
	if p.lastDays != 0 {
		t.Fatalf("provider must not be called for an out-of-range request")
	}

	days, err := g.Forecast(ctx, 48.85, 2.35, 16)
	if err != nil || len(days) != 16 {
		t.Fatalf("expected 16 days, got %d (%v)", len(days), err)
	}

	if _, err := g.Forecast(ctx, 48.85, 2.35, 0); err != nil || p.lastDays != 1 {
		t.Fatalf("expected days=0 to clamp to 1, got %d (%v)", p.lastDays, err)
	}
	if _, err := g.Forecast(ctx, 48.85, 2.35, -3); err != nil || p.lastDays != 1 {
		t.Fatalf("expected negative days to clamp to 1, got %d (%v)", p.lastDays, err)
	}
}

func TestGeocodeTakesFirstCandidate(t *testing.T) {
	p := &stubProvider{candidates: []Coordinates{
		{Name: "Paris", Latitude: 48.85, Longitude: 2.35},
		{Name: "Paris", Latitude: 33.66, Longitude: -95.55},
	}}
	g := NewGateway(p, nil, logging.Discard())

	c, err := g.Geocode(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if c.Latitude != 48.85 || c.Longitude != 2.35 {
		t.Fatalf("expected first candidate, got %+v", c)
	}
	if p.lastLimit != MaxGeocodeCandidates {
		t.Fatalf("expected limit %d, got %d", MaxGeocodeCandidates, p.lastLimit)
	}
}

func TestGeocodeFailures(t *testing.T) {
	g := NewGateway(&stubProvider{}, nil, logging.Discard())
	_, err := g.Geocode(context.Background(), "Atlantis")
	if !errors.Is(err, ErrLocationNotFound) || !apperror.IsValidation(err) {
		t.Fatalf("expected client-facing location not found, got %v", err)
	}

	g = NewGateway(&stubProvider{err: errors.New("dial tcp: timeout")}, nil, logging.Discard())
	_, err = g.Geocode(context.Background(), "Paris")
	if !errors.Is(err, ErrLocationNotFound) || !apperror.IsUpstream(err) {
		t.Fatalf("expected upstream location not found, got %v", err)
	}
}

func TestSeparateGeocoderIsPreferred(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider geocoding must not be used")}
	geocoder := &stubProvider{candidates: []Coordinates{{Name: "Oslo", Latitude: 59.91, Longitude: 10.75}}}

	c, err := NewGateway(provider, geocoder, logging.Discard()).Geocode(context.Background(), "Oslo")
	if err != nil || c.Name != "Oslo" {
		t.Fatalf("expected dedicated geocoder result, got %+v %v", c, err)
	}
}

func TestUpstreamErrorsAreTyped(t *testing.T) {
	g := NewGateway(&stubProvider{err: errors.New("503")}, nil, logging.Discard())
	ctx := context.Background()

	if _, err := g.CurrentWeather(ctx, 1, 1); !errors.Is(err, ErrUpstreamUnavailable) || !apperror.IsUpstream(err) {
		t.Fatalf("current: expected upstream unavailable, got %v", err)
	}
	if _, err := g.Forecast(ctx, 1, 1, 7); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("forecast: expected upstream unavailable, got %v", err)
	}
	if _, err := g.HistoricalWeather(ctx, 1, 1, "2024-01-01", "2024-01-02"); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("historical: expected upstream unavailable, got %v", err)
	}
}
