package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-favorites/internal/account"
	httpapi "github.com/i474232898/weather-favorites/internal/api/http"
	"github.com/i474232898/weather-favorites/internal/config"
	"github.com/i474232898/weather-favorites/internal/favorites"
	"github.com/i474232898/weather-favorites/internal/logging"
	"github.com/i474232898/weather-favorites/internal/scheduler"
	"github.com/i474232898/weather-favorites/internal/store"
	"github.com/i474232898/weather-favorites/internal/weather"
	"github.com/i474232898/weather-favorites/internal/weather/providers"
)

const serviceName = "weather-favorites"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logging.New(cfg.Log)
	entry := log.WithField("service", serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DB, entry)
	if err != nil {
		entry.WithError(err).Fatal("failed to open store")
	}
	defer db.Close()

	accounts := account.NewService(db.Users(), cfg.BcryptCost, entry)
	favs := favorites.NewService(db.Favorites(), entry)

	// Open-Meteo needs no key; Google takes over geocoding when one is configured.
	provider := providers.NewOpenMeteoProvider(cfg.Weather.OpenMeteo())
	var geo weather.Geocoder
	if cfg.Weather.GoogleGeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.Weather.GoogleGeocoderAPIKey)
	}
	gateway := weather.NewGateway(provider, geo, entry)

	sched := scheduler.New(db, cfg.MaintenanceInterval, entry)
	if err := sched.Start(); err != nil {
		entry.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.AppConfig{
		Name:      serviceName,
		AccessLog: os.Stdout,
		Log:       entry,
	}, httpapi.NewHandlers(accounts, favs, gateway, entry))

	go func() {
		entry.WithField("port", cfg.Port).Info("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			entry.WithError(err).Error("fiber server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		entry.WithError(err).Error("error during shutdown")
	}
	entry.Info("shutdown complete")
}
