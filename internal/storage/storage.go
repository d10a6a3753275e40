package storage

import (
	"context"
	"io"
)

// Store saves an uploaded blob and returns a retrievable reference for it.
// Callers decide what counts as an allowed extension.
type Store interface {
	Save(ctx context.Context, data io.Reader, ext string) (string, error)
}
