package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type countingTokens struct {
	calls int32
	err   error
}

func (c *countingTokens) Token() (*oauth2.Token, error) {
	n := atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return &oauth2.Token{AccessToken: fmt.Sprintf("tok-%d", n)}, nil
}

func memDSN(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}

func TestPoolAcquireIsLazyAndShared(t *testing.T) {
	p := NewPool(DriverSQLite, memDSN(t), nil)
	defer p.Close()
	require.Nil(t, p.db)

	ctx := context.Background()
	first, err := p.Acquire(ctx)
	require.NoError(t, err)
	second, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, p.Ping(ctx))

	// schema is in place
	_, err = first.ExecContext(ctx, `INSERT INTO Blogs (Title, Content, Summary, MediaUrl) VALUES ($1,$2,$3,$4)`, "t", "c", "s", nil)
	require.NoError(t, err)
}

func TestPoolCloseAllowsReopen(t *testing.T) {
	p := NewPool(DriverSQLite, memDSN(t), nil)
	ctx := context.Background()
	first, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	second, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	require.NoError(t, p.Close())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("oracle"), "", nil)
	require.Error(t, err)
}

func TestPostgresConnectPullsToken(t *testing.T) {
	tokens := &countingTokens{}
	p := NewPool(DriverPostgres, "postgres://blog@127.0.0.1:1/blogdb?sslmode=disable&connect_timeout=1", tokens)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.Acquire(ctx)
	require.Error(t, err) // nothing listens on port 1
	assert.GreaterOrEqual(t, atomic.LoadInt32(&tokens.calls), int32(1))
	assert.Nil(t, p.db, "failed open must not be cached")
}

func TestPostgresTokenFailurePropagates(t *testing.T) {
	tokens := &countingTokens{err: errors.New("idp down")}
	p := NewPool(DriverPostgres, "postgres://blog@127.0.0.1:1/blogdb?sslmode=disable&connect_timeout=1", tokens)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idp down")
}
