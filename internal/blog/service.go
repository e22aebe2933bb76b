package blog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mind-engage/mindengage-blog/internal/storage"
)

// NoSummary is stored when the key-phrase service finds nothing.
const NoSummary = "No summary available"

type KeyPhraser interface {
	KeyPhrases(ctx context.Context, text string) ([]string, error)
}

// Media is an uploaded file waiting to be stored under its original name.
type Media struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Input struct {
	Title   string
	Content string
	Media   *Media // optional
}

// Service runs the multi-store blog operations. Steps that touch the blob
// store are undone when a later step fails, except where noted.
type Service struct {
	store   Store
	blobs   storage.BlobStore
	phrases KeyPhraser
	log     *slog.Logger
}

func NewService(store Store, blobs storage.BlobStore, phrases KeyPhraser, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, blobs: blobs, phrases: phrases, log: log}
}

// Summary joins key phrases the way they are stored on a post.
func Summary(phrases []string) string {
	if len(phrases) == 0 {
		return NoSummary
	}
	return strings.Join(phrases, ", ")
}

// Upload stores m and returns its address.
func (s *Service) Upload(ctx context.Context, m Media) (string, error) {
	return s.blobs.Put(ctx, m.Name, m.ContentType, m.Body)
}

// Create uploads the optional media, summarizes the content and inserts the
// row. An upload is removed again if summarizing or inserting fails.
func (s *Service) Create(ctx context.Context, in Input) (Post, error) {
	p := Post{Title: in.Title, Content: in.Content}

	if in.Media != nil {
		addr, err := s.Upload(ctx, *in.Media)
		if err != nil {
			return Post{}, fmt.Errorf("upload media: %w", err)
		}
		p.MediaURL = &addr
	}

	phrases, err := s.phrases.KeyPhrases(ctx, in.Content)
	if err != nil {
		s.discard(ctx, p.MediaURL, "key phrases failed")
		return Post{}, fmt.Errorf("key phrases: %w", err)
	}
	p.Summary = Summary(phrases)

	id, err := s.store.Insert(ctx, p)
	if err != nil {
		s.discard(ctx, p.MediaURL, "insert failed")
		return Post{}, fmt.Errorf("insert blog: %w", err)
	}
	p.ID = id
	return p, nil
}

// Update rewrites title, content and media url of id. The summary is left
// as it was. A missing id is not an error: nothing is updated.
//
// With new media the superseded blob is deleted once the row is written;
// failing to delete it is only logged.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	old, err := s.store.MediaURL(ctx, id)
	if err != nil {
		return fmt.Errorf("read media url: %w", err)
	}

	p := Post{ID: id, Title: in.Title, Content: in.Content, MediaURL: old}
	if in.Media != nil {
		addr, err := s.Upload(ctx, *in.Media)
		if err != nil {
			return fmt.Errorf("upload media: %w", err)
		}
		p.MediaURL = &addr
	}

	n, err := s.store.Update(ctx, p)
	if err != nil {
		if in.Media != nil && !sameBlob(old, p.MediaURL) {
			s.discard(ctx, p.MediaURL, "update failed")
		}
		return fmt.Errorf("update blog: %w", err)
	}
	if n == 0 {
		s.log.Info("update matched no rows", "id", id)
	}

	if in.Media != nil && old != nil && !sameBlob(old, p.MediaURL) {
		name := storage.NameFromURL(*old)
		if err := s.blobs.Delete(context.WithoutCancel(ctx), name); err != nil {
			s.log.Warn("failed to delete old media", "id", id, "blob", name, "err", err)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Post, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Post, error) {
	return s.store.Get(ctx, id)
}

// Delete removes the row only; its media stays in the blob store.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) discard(ctx context.Context, addr *string, reason string) {
	if addr == nil {
		return
	}
	name := storage.NameFromURL(*addr)
	if err := s.blobs.Delete(context.WithoutCancel(ctx), name); err != nil {
		s.log.Error("rollback of uploaded media failed", "blob", name, "reason", reason, "err", err)
		return
	}
	s.log.Info("rolled back uploaded media", "blob", name, "reason", reason)
}

func sameBlob(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return storage.NameFromURL(*a) == storage.NameFromURL(*b)
}
