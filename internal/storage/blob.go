package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore keeps uploaded media by name. Put overwrites an existing blob with
// the same name and returns the address clients can fetch it from.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	URL(name string) (string, error)
	Delete(ctx context.Context, name string) error
}

// NameFromURL recovers the blob name from an address returned by Put.
func NameFromURL(addr string) string {
	if addr == "" {
		return ""
	}
	if u, err := url.Parse(addr); err == nil && u.Path != "" {
		// the last escaped segment, so an escaped "/" stays in the name
		seg := u.EscapedPath()
		seg = seg[strings.LastIndex(seg, "/")+1:]
		if name, err := url.PathUnescape(seg); err == nil {
			return name
		}
		return seg
	}
	if i := strings.LastIndex(addr, "/"); i >= 0 {
		return addr[i+1:]
	}
	return addr
}

func joinURL(base, name string) string {
	return strings.TrimSuffix(base, "/") + "/" + url.PathEscape(name)
}
