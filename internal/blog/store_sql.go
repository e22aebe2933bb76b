package blog

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	conn Conn
}

func NewSQLStore(conn Conn) *SQLStore {
	return &SQLStore{conn: conn}
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) Insert(ctx context.Context, p Post) (int64, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = db.QueryRowContext(ctx,
		`INSERT INTO Blogs (Title, Content, Summary, MediaUrl) VALUES ($1,$2,$3,$4) RETURNING Id`,
		p.Title, p.Content, p.Summary, nullString(p.MediaURL)).Scan(&id)
	return id, err
}

func (s *SQLStore) List(ctx context.Context) ([]Post, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT Id, Title, Content, Summary, MediaUrl FROM Blogs ORDER BY Id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Post, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return Post{}, err
	}
	row := db.QueryRowContext(ctx, `SELECT Id, Title, Content, Summary, MediaUrl FROM Blogs WHERE Id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

func (s *SQLStore) MediaURL(ctx context.Context, id int64) (*string, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var u sql.NullString
	err = db.QueryRowContext(ctx, `SELECT MediaUrl FROM Blogs WHERE Id = $1`, id).Scan(&u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return stringPtr(u), nil
}

func (s *SQLStore) Update(ctx context.Context, p Post) (int64, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE Blogs SET Title = $1, Content = $2, MediaUrl = $3 WHERE Id = $4`,
		p.Title, p.Content, nullString(p.MediaURL), p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) Delete(ctx context.Context, id int64) (int64, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM Blogs WHERE Id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(r scanner) (Post, error) {
	var (
		p Post
		u sql.NullString
	)
	if err := r.Scan(&p.ID, &p.Title, &p.Content, &p.Summary, &u); err != nil {
		return Post{}, err
	}
	p.MediaURL = stringPtr(u)
	return p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
