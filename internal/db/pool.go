package db

import (
	"context"
	"database/sql"
	"sync"

	"golang.org/x/oauth2"
)

// Pool hands out the process-wide *sql.DB, opening it on first use. A failed
// open is not remembered; the next caller tries again.
type Pool struct {
	driver Driver
	dsn    string
	tokens oauth2.TokenSource

	mu sync.Mutex
	db *sql.DB
}

func NewPool(driver Driver, dsn string, tokens oauth2.TokenSource) *Pool {
	return &Pool{driver: driver, dsn: dsn, tokens: tokens}
}

// Acquire returns a usable handle, opening and migrating the database if this
// is the first successful call.
func (p *Pool) Acquire(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db, nil
	}
	db, err := Open(ctx, p.driver, p.dsn, p.tokens)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// Ping verifies a round trip to the database, acquiring it if needed.
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
