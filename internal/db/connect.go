package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"golang.org/x/oauth2"
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/mind-engage/mindengage-blog/internal/identity"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists. When tokens is non-nil and the
// driver is postgres, every new physical connection authenticates with a
// freshly issued access token in place of the DSN password.
func Open(ctx context.Context, driver Driver, dsn string, tokens oauth2.TokenSource) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "file:blog.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
	case DriverPostgres:
		if dsn == "" {
			dsn = "postgres://localhost:5432/blogdb?sslmode=disable"
		}
		db, err = openPostgres(dsn, tokens)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	tunePool(driver, db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openPostgres(dsn string, tokens oauth2.TokenSource) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if tokens == nil {
		return stdlib.OpenDB(*cfg), nil
	}
	return stdlib.OpenDB(*cfg, stdlib.OptionBeforeConnect(func(ctx context.Context, cc *pgx.ConnConfig) error {
		tok, err := identity.AccessToken(tokens)
		if err != nil {
			return err
		}
		cc.Password = tok
		return nil
	})), nil
}

// tunePool keeps server connections shorter-lived than the access tokens they
// were opened with.
func tunePool(driver Driver, db *sql.DB) {
	switch driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(45 * time.Minute)
		db.SetConnMaxIdleTime(15 * time.Minute)
	}
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS Blogs (
  Id INTEGER PRIMARY KEY AUTOINCREMENT,
  Title TEXT NOT NULL,
  Content TEXT NOT NULL,
  Summary TEXT NOT NULL DEFAULT '',
  MediaUrl TEXT
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS Blogs (
  Id SERIAL PRIMARY KEY,
  Title TEXT NOT NULL,
  Content TEXT NOT NULL,
  Summary TEXT NOT NULL DEFAULT '',
  MediaUrl TEXT
);
`
