package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func init() {
	// sqlx only knows the cgo driver name "sqlite3".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Config selects the SQL backend.
type Config struct {
	Driver string
	DSN    string
}

// DB is the relational store backing users and favorite locations. It is the
// single source of truth; uniqueness is enforced by its constraints.
type DB struct {
	db     *sqlx.DB
	driver string
	log    logrus.FieldLogger
}

// Open connects, applies the schema and returns a ready store.
func Open(ctx context.Context, cfg Config, log logrus.FieldLogger) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite && !isMemoryDSN(cfg.DSN) {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	if driver == DriverSQLite {
		// go-sqlite serializes writers; one connection also keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping db")
	}

	s := &DB{
		db:     db,
		driver: driver,
		log:    log.WithFields(logrus.Fields{"component": "store", "driver": driver}),
	}

	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize db")
	}

	s.log.Info("store ready")
	return s, nil
}

func (s *DB) initialize(ctx context.Context) error {
	var stmts []string
	if s.driver == DriverSQLite {
		stmts = append(stmts,
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		)
	}
	stmts = append(stmts, schema(s.driver)...)

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "exec %q", firstLine(stmt))
		}
	}
	return nil
}

func schema(driver string) []string {
	if driver == DriverPostgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            BIGSERIAL PRIMARY KEY,
				username      TEXT   NOT NULL UNIQUE,
				password_hash TEXT   NOT NULL,
				created_at    BIGINT NOT NULL,
				updated_at    BIGINT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS favorite_locations (
				id            BIGSERIAL        PRIMARY KEY,
				user_id       BIGINT           NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				location_name VARCHAR(100)     NOT NULL,
				latitude      DOUBLE PRECISION NOT NULL,
				longitude     DOUBLE PRECISION NOT NULL,
				created_at    BIGINT           NOT NULL,
				CONSTRAINT uq_favorite_location UNIQUE (user_id, location_name, latitude, longitude)
			)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    NOT NULL UNIQUE,
			password_hash TEXT    NOT NULL,
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS favorite_locations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location_name TEXT    NOT NULL,
			latitude      REAL    NOT NULL,
			longitude     REAL    NOT NULL,
			created_at    INTEGER NOT NULL,
			CONSTRAINT uq_favorite_location UNIQUE (user_id, location_name, latitude, longitude)
		)`,
	}
}

// Users returns the user repository.
func (s *DB) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Favorites returns the favorite location repository.
func (s *DB) Favorites() *FavoriteRepository {
	return &FavoriteRepository{db: s.db}
}

// Ping checks connectivity.
func (s *DB) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "ping db")
}

// Maintain refreshes query planner statistics.
func (s *DB) Maintain(ctx context.Context) error {
	stmt := "PRAGMA optimize"
	if s.driver == DriverPostgres {
		stmt = "ANALYZE users, favorite_locations"
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "maintain db")
	}
	return nil
}

// Close releases the connection pool.
func (s *DB) Close() error {
	return errors.Wrap(s.db.Close(), "close db")
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
