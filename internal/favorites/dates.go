package favorites

import (
	"time"

	"github.com/i474232898/weather-favorites/internal/apperror"
)

// DateLayout is the only accepted date format, YYYY-MM-DD.
const DateLayout = "2006-01-02"

// earliestDate is the oldest start date accepted for historical lookups.
var earliestDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ValidateDates checks a closed date interval against now. The checks run in
// order (format, range, future, too early) and the first failure is returned.
func ValidateDates(startDate, endDate string, now time.Time) error {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return apperror.NewValidationError("Invalid date format. Use YYYY-MM-DD.", ErrInvalidDateFormat)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return apperror.NewValidationError("Invalid date format. Use YYYY-MM-DD.", ErrInvalidDateFormat)
	}

	if start.After(end) {
		return apperror.NewValidationError("start_date must not be after end_date.", ErrInvalidDateRange)
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if end.After(today) {
		return apperror.NewValidationError("end_date cannot be in the future.", ErrFutureDateRejected)
	}

	if start.Before(earliestDate) {
		return apperror.NewValidationError("start_date must not be earlier than 1900-01-01.", ErrDateTooEarly)
	}

	return nil
}
