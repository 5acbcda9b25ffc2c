package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-favorites/internal/apperror"
	"github.com/i474232898/weather-favorites/internal/common"
)

// MaxLocationNameLength matches the width of the location_name column.
const MaxLocationNameLength = 100

// Service owns per-user favorite locations.
type Service struct {
	repo Repository
	now  func() time.Time
	log  logrus.FieldLogger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used for date validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service.
func NewService(repo Repository, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
		log:  log.WithField("component", "favorites"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateName checks a location name before any lookup is spent on it.
func ValidateName(name string) error {
	if common.Blank(name) {
		return apperror.NewValidationError("Location name must not be empty.", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxLocationNameLength {
		return apperror.NewValidationError(
			fmt.Sprintf("Location name must be at most %d characters.", MaxLocationNameLength), ErrInvalidInput)
	}
	return nil
}

// Add saves a favorite for userID. The existence check gives a friendly error
// on the common path; the storage constraint catches inserts that race past it.
func (s *Service) Add(ctx context.Context, userID int64, name string, lat, lon float64) (Favorite, error) {
	if err := ValidateName(name); err != nil {
		return Favorite{}, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Favorite{}, apperror.NewValidationError(
			fmt.Sprintf("Coordinates (%g, %g) are out of range.", lat, lon), ErrInvalidInput)
	}

	exists, err := s.repo.Exists(ctx, userID, name, lat, lon)
	if err != nil {
		return Favorite{}, apperror.NewInternalError("check favorite", err)
	}
	if exists {
		return Favorite{}, alreadyExists(name, ErrAlreadyExists)
	}

	fav, err := s.repo.Insert(ctx, userID, name, lat, lon)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Favorite{}, alreadyExists(name, err)
		}
		return Favorite{}, apperror.NewInternalError("insert favorite", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"favorite_id": fav.ID,
		"location":    name,
	}).Info("favorite location added")

	return fav, nil
}

// List returns every favorite owned by userID.
func (s *Service) List(ctx context.Context, userID int64) ([]Favorite, error) {
	favs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternalError("list favorites", err)
	}
	return favs, nil
}

// Get returns favorite id if userID owns it. Rows owned by someone else are
// indistinguishable from missing rows.
func (s *Service) Get(ctx context.Context, userID, id int64) (Favorite, error) {
	fav, err := s.repo.GetByUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Favorite{}, apperror.NewNotFoundError(
				fmt.Sprintf("Favorite location with ID '%d' not found.", id), err)
		}
		return Favorite{}, apperror.NewInternalError("get favorite", err)
	}
	return fav, nil
}

// ResolveForHistorical fetches the favorite and validates the date range.
func (s *Service) ResolveForHistorical(ctx context.Context, userID, id int64, startDate, endDate string) (HistoricalQuery, error) {
	fav, err := s.Get(ctx, userID, id)
	if err != nil {
		return HistoricalQuery{}, err
	}

	if err := s.ValidateDates(startDate, endDate); err != nil {
		return HistoricalQuery{}, err
	}

	return HistoricalQuery{
		Favorite:  fav,
		Latitude:  fav.Latitude,
		Longitude: fav.Longitude,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// ValidateDates checks the range against the service clock.
func (s *Service) ValidateDates(startDate, endDate string) error {
	return ValidateDates(startDate, endDate, s.now())
}

func alreadyExists(name string, cause error) error {
	return apperror.NewConflictError(
		fmt.Sprintf("Favorite location '%s' already exists for this user.", name), cause)
}
