package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-favorites/internal/logging"
	"github.com/i474232898/weather-favorites/internal/store"
	"github.com/i474232898/weather-favorites/internal/weather/providers"
)

type AppConfig struct {
	Port string

	Log logging.Config
	DB  store.Config

	Weather WeatherConfig

	// BcryptCost is the work factor for password hashes.
	BcryptCost int

	// MaintenanceInterval controls how often the store is optimized.
	MaintenanceInterval time.Duration
}

// WeatherConfig is handed to the weather gateway at construction.
type WeatherConfig struct {
	ForecastURL  string
	ArchiveURL   string
	GeocodingURL string
	APIKey       string

	// GoogleGeocoderAPIKey switches geocoding to Google when set.
	GoogleGeocoderAPIKey string

	HTTPTimeout   time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// OpenMeteo converts the weather settings into provider options.
func (w WeatherConfig) OpenMeteo() providers.OpenMeteoConfig {
	return providers.OpenMeteoConfig{
		ForecastURL:  w.ForecastURL,
		ArchiveURL:   w.ArchiveURL,
		GeocodingURL: w.GeocodingURL,
		APIKey:       w.APIKey,
		HTTP: providers.HTTPClientConfig{
			Client: &http.Client{Timeout: w.HTTPTimeout},
			Backoff: providers.BackoffConfig{
				MaxRetries:      w.MaxRetries,
				InitialInterval: w.RetryInterval,
				MaxInterval:     10 * w.RetryInterval,
			},
		},
	}
}

// Load reads configuration from the environment (and .env when present)
// with sensible defaults. All invalid values are reported together.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var errs []error
	cfg := &AppConfig{
		Port: getenvDefault("PORT", "8080"),
		Log: logging.Config{
			Level:  getenvDefault("LOG_LEVEL", "info"),
			Format: getenvDefault("LOG_FORMAT", "json"),
		},
		DB: store.Config{
			Driver: getenvDefault("DB_DRIVER", store.DriverSQLite),
			DSN:    getenvDefault("DB_DSN", "var/weather-favorites.db"),
		},
		Weather: WeatherConfig{
			ForecastURL:          getenvDefault("WEATHER_FORECAST_URL", providers.DefaultOpenMeteoForecastURL),
			ArchiveURL:           getenvDefault("WEATHER_ARCHIVE_URL", providers.DefaultOpenMeteoArchiveURL),
			GeocodingURL:         getenvDefault("WEATHER_GEOCODING_URL", providers.DefaultOpenMeteoGeocodingURL),
			APIKey:               os.Getenv("WEATHER_API_KEY"),
			GoogleGeocoderAPIKey: os.Getenv("GOOGLE_GEOCODER_API_KEY"),
		},
	}

	cfg.BcryptCost = getenvInt("BCRYPT_COST", 10, &errs)
	cfg.Weather.HTTPTimeout = getenvDuration("HTTP_TIMEOUT", 10*time.Second, &errs)
	cfg.Weather.MaxRetries = getenvInt("HTTP_MAX_RETRIES", 2, &errs)
	cfg.Weather.RetryInterval = getenvDuration("HTTP_RETRY_INTERVAL", 300*time.Millisecond, &errs)
	cfg.MaintenanceInterval = getenvDuration("MAINTENANCE_INTERVAL", 6*time.Hour, &errs)

	if d := strings.ToLower(cfg.DB.Driver); d != store.DriverSQLite && d != store.DriverPostgres {
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER %q: want %s or %s", cfg.DB.Driver, store.DriverSQLite, store.DriverPostgres))
	} else {
		cfg.DB.Driver = d
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("invalid BCRYPT_COST %d: must be within 4..31", cfg.BcryptCost))
	}
	if cfg.Weather.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("invalid HTTP_MAX_RETRIES %d: must not be negative", cfg.Weather.MaxRetries))
	}
	if cfg.Weather.RetryInterval <= 0 {
		errs = append(errs, errors.New("invalid HTTP_RETRY_INTERVAL: must be positive"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}
