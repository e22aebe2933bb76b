package blog

import (
	"context"
	"database/sql"
)

type Store interface {
	Insert(ctx context.Context, p Post) (int64, error)
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id int64) (Post, error) // ErrNotFound when absent
	// MediaURL returns nil for an absent row as well as for a row without media.
	MediaURL(ctx context.Context, id int64) (*string, error)
	// Update writes title, content and media url; it reports rows affected.
	Update(ctx context.Context, p Post) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Conn yields a live database handle; db.Pool satisfies it.
type Conn interface {
	Acquire(ctx context.Context) (*sql.DB, error)
}
