package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/i474232898/weather-favorites/internal/favorites"
)

// FavoriteRepository implements favorites.Repository on the SQL store.
type FavoriteRepository struct {
	db *sqlx.DB
}

var _ favorites.Repository = (*FavoriteRepository)(nil)

type favoriteRow struct {
	ID           int64   `db:"id"`
	UserID       int64   `db:"user_id"`
	LocationName string  `db:"location_name"`
	Latitude     float64 `db:"latitude"`
	Longitude    float64 `db:"longitude"`
	CreatedAt    int64   `db:"created_at"`
}

func (r favoriteRow) toFavorite() favorites.Favorite {
	return favorites.Favorite{
		ID:           r.ID,
		UserID:       r.UserID,
		LocationName: r.LocationName,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		CreatedAt:    unixToTime(r.CreatedAt),
	}
}

const favoriteColumns = "id, user_id, location_name, latitude, longitude, created_at"

// Exists implements favorites.Repository.
func (r *FavoriteRepository) Exists(ctx context.Context, userID int64, name string, lat, lon float64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.db.Rebind(`SELECT COUNT(*) FROM favorite_locations
			WHERE user_id = ? AND location_name = ? AND latitude = ? AND longitude = ?`),
		userID, name, lat, lon,
	)
	if err != nil {
		return false, errors.Wrap(err, "count favorites")
	}
	return n > 0, nil
}

// Insert implements favorites.Repository.
func (r *FavoriteRepository) Insert(ctx context.Context, userID int64, name string, lat, lon float64) (favorites.Favorite, error) {
	now := time.Now().Unix()

	var id int64
	err := r.db.QueryRowxContext(ctx,
		r.db.Rebind(`INSERT INTO favorite_locations (user_id, location_name, latitude, longitude, created_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
		userID, name, lat, lon, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return favorites.Favorite{}, fmt.Errorf("insert favorite: %w: %w", favorites.ErrAlreadyExists, err)
		}
		return favorites.Favorite{}, errors.Wrap(err, "insert favorite")
	}

	return favoriteRow{
		ID:           id,
		UserID:       userID,
		LocationName: name,
		Latitude:     lat,
		Longitude:    lon,
		CreatedAt:    now,
	}.toFavorite(), nil
}

// ListByUser implements favorites.Repository.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]favorites.Favorite, error) {
	var rows []favoriteRow
	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind("SELECT "+favoriteColumns+" FROM favorite_locations WHERE user_id = ? ORDER BY id"),
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list favorites")
	}

	out := make([]favorites.Favorite, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toFavorite())
	}
	return out, nil
}

// GetByUser implements favorites.Repository.
func (r *FavoriteRepository) GetByUser(ctx context.Context, userID, id int64) (favorites.Favorite, error) {
	var row favoriteRow
	err := r.db.GetContext(ctx, &row,
		r.db.Rebind("SELECT "+favoriteColumns+" FROM favorite_locations WHERE id = ? AND user_id = ?"),
		id, userID,
	)
	if err != nil {
		if noRows(err) {
			return favorites.Favorite{}, errors.Wrap(favorites.ErrNotFound, "query favorite")
		}
		return favorites.Favorite{}, errors.Wrap(err, "query favorite")
	}
	return row.toFavorite(), nil
}
