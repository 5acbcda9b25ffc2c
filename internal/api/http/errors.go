package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-favorites/internal/apperror"
)

const (
	msgInternal     = "Internal server error."
	msgCoordinates  = "Could not fetch coordinates for the provided location."
	msgWeather      = "Could not fetch weather data."
	msgHistorical   = "Could not fetch historical weather data."
	msgForecast     = "Could not fetch weather forecast data."
	fallbackKey     = "upstream_fallback"
	requestIDLocals = "request_id"
)

// fallback sets the message shown when the route fails on the weather provider.
func fallback(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(fallbackKey, message)
		return c.Next()
	}
}

// ErrorHandler renders every failure as {"error": message}. Messages of
// errors that are not safe to show are replaced before they leave the process.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := msgInternal

		var fe *fiber.Error
		if ae, ok := apperror.As(err); ok {
			status = ae.StatusCode()
			switch {
			case ae.Safe():
				message = ae.Message
			case ae.Kind == apperror.Upstream:
				if fb, ok := c.Locals(fallbackKey).(string); ok && fb != "" {
					message = fb
				}
			}
		} else if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		entry := log.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"method":     c.Method(),
			"route":      c.Route().Path,
			"status":     status,
		})
		if status >= fiber.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}

		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocals).(string)
	return id
}
