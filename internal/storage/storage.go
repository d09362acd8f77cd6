package storage

import (
	"context"
	"io"
)

// ImageStore persists uploaded image bytes and returns a publicly
// retrievable URL. The rest of the system only ever stores and echoes
// these URLs; it never touches image bytes again.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}
