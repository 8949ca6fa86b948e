package storage

import (
	"context"
	"io"
)

// ObjectStorage holds uploaded resource files and serves them by public URL.
type ObjectStorage interface {
	// Upload stores an object under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the public URL for an object.
	GetURL(key string) string

	// KeyFromURL maps a public URL back to its object key. The second
	// return value is false when the URL does not belong to this storage.
	KeyFromURL(url string) (string, bool)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
