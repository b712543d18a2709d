package storage

import (
	"context"
)

// DefaultContentType is sent when the uploaded file carries no MIME type
const DefaultContentType = "application/octet-stream"

// ObjectStore represents an object store that accepts uploaded files
type ObjectStore interface {
	// Name returns a human-readable name for this store (e.g., "s3://notes-assets")
	Name() string

	// Put uploads body under key in a single request.
	// key: rendered object path without leading or trailing slashes
	// contentType: MIME type; empty means DefaultContentType
	Put(ctx context.Context, key string, contentType string, body []byte) error
}

// ContentType returns mime, or DefaultContentType when mime is empty
func ContentType(mime string) string {
	if mime == "" {
		return DefaultContentType
	}
	return mime
}
