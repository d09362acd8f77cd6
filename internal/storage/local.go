package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// localStore implements ImageStore on the local file system. Intended for
// development; the directory must be served statically for the returned
// URLs to resolve.
type localStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStore creates a disk-backed image store rooted at dir.
func NewLocalStore(dir, baseURL string, logger zerolog.Logger) (ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}
	return &localStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local-image-store").Logger(),
	}, nil
}

// Put writes the object under dir and returns baseURL/name.
func (s *localStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	// Base strips any path components a caller might pass through in
	// the object name, keeping writes inside dir.
	path := filepath.Join(s.dir, filepath.Base(name))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return "", fmt.Errorf("failed to write image file %s: %w", path, err)
	}

	url := s.baseURL + "/" + filepath.Base(name)

	s.logger.Debug().
		Str("path", path).
		Str("url", url).
		Msg("image written")

	return url, nil
}
