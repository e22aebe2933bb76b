// Package identity issues the short-lived access tokens used to open database
// connections.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// NewTokenSource returns a client-credentials token source. Tokens are cached
// by the source and re-issued once they are close to expiry.
func NewTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	if cfg.TokenURL == "" {
		return nil, errors.New("identity: token url is required")
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	if cfg.Timeout > 0 {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	}
	return cc.TokenSource(ctx), nil
}

// Static wraps a fixed token, for local databases and tests.
func Static(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

// AccessToken pulls a token from ts and returns its raw value.
func AccessToken(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("identity: token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("identity: empty access token")
	}
	return tok.AccessToken, nil
}
