package favorites

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("favorite location not found")
	ErrAlreadyExists = errors.New("favorite location already exists")
	ErrInvalidInput  = errors.New("invalid favorite location")

	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrInvalidDateRange   = errors.New("start date after end date")
	ErrFutureDateRejected = errors.New("end date in the future")
	ErrDateTooEarly       = errors.New("start date before 1900-01-01")
)

// Favorite is a saved place owned by exactly one user. The tuple
// (UserID, LocationName, Latitude, Longitude) is unique.
type Favorite struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"-"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"-"`
}

// HistoricalQuery is a favorite's coordinates paired with a validated date range.
type HistoricalQuery struct {
	Favorite  Favorite
	Latitude  float64
	Longitude float64
	StartDate string
	EndDate   string
}

// Repository persists favorites.
type Repository interface {
	// Exists reports whether the exact tuple is already stored.
	Exists(ctx context.Context, userID int64, name string, lat, lon float64) (bool, error)

	// Insert stores a new row. Returns ErrAlreadyExists when the uniqueness
	// constraint rejects it.
	Insert(ctx context.Context, userID int64, name string, lat, lon float64) (Favorite, error)

	// ListByUser returns the user's rows in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]Favorite, error)

	// GetByUser returns ErrNotFound unless row id exists and is owned by userID.
	GetByUser(ctx context.Context, userID, id int64) (Favorite, error)
}
