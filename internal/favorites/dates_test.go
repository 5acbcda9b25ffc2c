package favorites

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-favorites/internal/apperror"
)

func TestValidateDates(t *testing.T) {
	now := time.Date(2024, time.June, 15, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start string
		end   string
		want  error
	}{
		{"valid week", "2024-01-01", "2024-01-07", nil},
		{"single day", "2024-03-03", "2024-03-03", nil},
		{"today is allowed", "2024-06-10", "2024-06-15", nil},
		{"earliest day", "1900-01-01", "1900-01-02", nil},
		{"bad month", "2024-13-01", "2024-12-31", ErrInvalidDateFormat},
		{"bad end", "2024-01-01", "31/12/2024", ErrInvalidDateFormat},
		{"empty", "", "", ErrInvalidDateFormat},
		{"reversed", "2024-01-07", "2024-01-01", ErrInvalidDateRange},
		{"tomorrow", "2024-06-16", "2024-06-16", ErrFutureDateRejected},
		{"too early", "1899-12-31", "1900-01-05", ErrDateTooEarly},
		// format wins over range when both are wrong
		{"format before range", "2024-02-30", "2024-01-01", ErrInvalidDateFormat},
		// range wins over future
		{"range before future", "2030-01-02", "2030-01-01", ErrInvalidDateRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDates(tc.start, tc.end, now)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !apperror.IsValidation(err) {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestValidateDatesUsesCallTime(t *testing.T) {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(DateLayout)

	err := ValidateDates(tomorrow, tomorrow, time.Now())
	if !errors.Is(err, ErrFutureDateRejected) {
		t.Fatalf("expected future date rejection, got %v", err)
	}
}
