package httpapi

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-favorites/internal/metrics"
)

// AppConfig configures NewApp.
type AppConfig struct {
	Name string
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
	Log       logrus.FieldLogger
}

// NewApp builds the Fiber app with middleware, /metrics and all routes.
func NewApp(cfg AppConfig, h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          ErrorHandler(cfg.Log),
	})

	// Global middleware. recover sits inside observe so a panic is rendered
	// and counted like any other failure.
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDLocals,
	}))
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:request_id} ${status} - ${latency} ${method} ${path}\n",
			Output: cfg.AccessLog,
		}))
	}
	app.Use(observe)
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	RegisterRoutes(app, h)
	return app
}

// observe records request metrics. Errors are rendered here so the final
// status is known.
func observe(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	metrics.ObserveHTTP(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
	return nil
}
