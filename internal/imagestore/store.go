// Package imagestore reads documents and their extracted images. The
// chat core only ever reads these; ingestion writes them elsewhere.
package imagestore

import (
	"context"
	"errors"

	"figment/internal/figures"
)

var ErrNotFound = errors.New("imagestore: document not found")

type Store interface {
	// Images returns every extracted image for a document, ordered by
	// image id. Unknown documents yield an empty slice, not an error.
	Images(ctx context.Context, documentID string) ([]figures.DocumentImage, error)

	// DocumentText returns the document's linearized body text.
	DocumentText(ctx context.Context, documentID string) (string, error)
}
