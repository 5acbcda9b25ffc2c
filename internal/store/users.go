package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/i474232898/weather-favorites/internal/account"
)

// UserRepository implements account.Repository on the SQL store.
type UserRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*UserRepository)(nil)

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func (r userRow) toUser() account.User {
	return account.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    unixToTime(r.CreatedAt),
		UpdatedAt:    unixToTime(r.UpdatedAt),
	}
}

// CreateUser implements account.Repository.
func (r *UserRepository) CreateUser(ctx context.Context, username, passwordHash string) (account.User, error) {
	now := time.Now().Unix()

	var id int64
	err := r.db.QueryRowxContext(ctx,
		r.db.Rebind("INSERT INTO users (username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id"),
		username, passwordHash, now, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return account.User{}, fmt.Errorf("insert user: %w: %w", account.ErrDuplicateUser, err)
		}
		return account.User{}, errors.Wrap(err, "insert user")
	}

	return userRow{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}.toUser(), nil
}

// GetUserByUsername implements account.Repository.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (account.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		r.db.Rebind("SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = ?"),
		username,
	)
	if err != nil {
		if noRows(err) {
			return account.User{}, errors.Wrap(account.ErrUserNotFound, "query user")
		}
		return account.User{}, errors.Wrap(err, "query user")
	}
	return row.toUser(), nil
}

// UpdatePasswordHash implements account.Repository.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?"),
		passwordHash, time.Now().Unix(), username,
	)
	if err != nil {
		return errors.Wrap(err, "update user")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrap(account.ErrUserNotFound, "update user")
	}
	return nil
}
