package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/migrations"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type Repository struct {
	db     *sqlx.DB
	driver string
	dsn    string
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx so helpers can run
// inside or outside a transaction.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func New(driver, dsn string) (*Repository, error) {
	switch driver {
	case DriverPostgres, "":
		db, err := sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		return &Repository{db: db, driver: DriverPostgres, dsn: dsn}, nil

	case DriverSQLite:
		db, err := sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// SQLite allows one writer; a single connection serializes
		// transactions and keeps in-memory databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		return &Repository{db: db, driver: DriverSQLite, dsn: dsn}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) DB() *sqlx.DB {
	return r.db
}

func (r *Repository) Driver() string {
	return r.driver
}

// Migrate applies the embedded schema for the connected driver. SQLite
// migrates through the shared handle so in-memory databases see the schema;
// Postgres gets its own short-lived connection.
func (r *Repository) Migrate() error {
	src, err := iofs.New(migrations.FS, r.driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch r.driver {
	case DriverSQLite:
		drv, err := migratesqlite.WithInstance(r.db.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to init sqlite migrator: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", drv)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		// Closing m would close the shared pool.
	default:
		m, err = migrate.NewWithSourceInstance("iofs", src, pgx5URL(r.dsn))
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer m.Close()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// pgx5URL rewrites a postgres:// DSN to the scheme registered by the
// golang-migrate pgx/v5 driver.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// inTx runs fn in a transaction and commits when fn returns nil.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// lockPartner serializes balance-changing writes for one partner. SQLite
// already runs a single writer connection, so only Postgres takes a row lock.
func (r *Repository) lockPartner(ctx context.Context, tx *sqlx.Tx, partnerID interface{}) error {
	var id string
	query := "SELECT id FROM partners WHERE id = ?"
	if r.driver == DriverPostgres {
		query += " FOR UPDATE"
	}
	err := tx.GetContext(ctx, &id, tx.Rebind(query), partnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPartnerNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
