package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// FSStore keeps blobs as files under base. It is meant for local development;
// Handler serves the files back so the addresses it hands out resolve.
type FSStore struct {
	base      string
	publicURL string
}

func NewFSStore(base, publicURL string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, publicURL: publicURL}, nil
}

func (s *FSStore) path(name string) string {
	// rooting the name keeps it inside base
	return filepath.Join(s.base, filepath.Clean("/"+name))
}

func (s *FSStore) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if name == "" {
		return "", errors.New("empty key")
	}
	dst := s.path(name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.URL(name)
}

func (s *FSStore) URL(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty key")
	}
	if s.publicURL != "" {
		return joinURL(s.publicURL, name), nil
	}
	abs, err := filepath.Abs(s.path(name))
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func (s *FSStore) Delete(_ context.Context, name string) error {
	if name == "" {
		return errors.New("empty key")
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// Handler serves stored blobs; mount it with the route prefix stripped.
func (s *FSStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.base))
}
