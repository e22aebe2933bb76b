package blog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-blog/internal/db"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	p := db.NewPool(db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared", nil)
	t.Cleanup(func() { _ = p.Close() })
	return NewSQLStore(p)
}

func strp(s string) *string { return &s }

func TestSQLStoreRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	id1, err := s.Insert(ctx, Post{Title: "A", Content: "Hello world", Summary: "Hello"})
	require.NoError(t, err)
	id2, err := s.Insert(ctx, Post{Title: "B", Content: "c", Summary: "s", MediaURL: strp("http://x/b.png")})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	got, err := s.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, Post{ID: id1, Title: "A", Content: "Hello world", Summary: "Hello"}, got)
	assert.Nil(t, got.MediaURL)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	require.NotNil(t, all[1].MediaURL)
	assert.Equal(t, "http://x/b.png", *all[1].MediaURL)
}

func TestSQLStoreListEmpty(t *testing.T) {
	s := newSQLiteStore(t)
	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSQLStoreGetMissing(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreMediaURL(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	withMedia, err := s.Insert(ctx, Post{Title: "t", Content: "c", MediaURL: strp("http://x/a.png")})
	require.NoError(t, err)
	without, err := s.Insert(ctx, Post{Title: "t", Content: "c"})
	require.NoError(t, err)

	u, err := s.MediaURL(ctx, withMedia)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "http://x/a.png", *u)

	u, err = s.MediaURL(ctx, without)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.MediaURL(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSQLStoreUpdateKeepsSummary(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	id, err := s.Insert(ctx, Post{Title: "old", Content: "old body", Summary: "old summary"})
	require.NoError(t, err)

	n, err := s.Update(ctx, Post{ID: id, Title: "new", Content: "new body", Summary: "ignored", MediaURL: strp("http://x/n.png")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "new body", got.Content)
	assert.Equal(t, "old summary", got.Summary)
	require.NotNil(t, got.MediaURL)
	assert.Equal(t, "http://x/n.png", *got.MediaURL)

	n, err = s.Update(ctx, Post{ID: id + 100, Title: "x", Content: "y"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLStoreDelete(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	id, err := s.Insert(ctx, Post{Title: "t", Content: "c"})
	require.NoError(t, err)
	other, err := s.Insert(ctx, Post{Title: "u", Content: "d"})
	require.NoError(t, err)

	n, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other, all[0].ID)
}
