package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-favorites/internal/apperror"
)

var validate = validator.New()

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updatePasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type addFavoriteRequest struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	LocationName string `json:"location_name" validate:"required"`
}

type historicalQuery struct {
	Username  string `query:"username"`
	Password  string `query:"password"`
	StartDate string `query:"start_date" validate:"required"`
	EndDate   string `query:"end_date" validate:"required"`
}

// bindBody decodes and validates a JSON body. Any failure becomes a
// validation error carrying message.
func bindBody(c *fiber.Ctx, out any, message string) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.NewValidationError(message, err)
	}
	if err := validate.Struct(out); err != nil {
		return apperror.NewValidationError(message, err)
	}
	return nil
}

func bindQuery(c *fiber.Ctx, out any, message string) error {
	if err := c.QueryParser(out); err != nil {
		return apperror.NewValidationError(message, err)
	}
	if err := validate.Struct(out); err != nil {
		return apperror.NewValidationError(message, err)
	}
	return nil
}
