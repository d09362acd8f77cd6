package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Loader reads a rate table from some source.
type Loader interface {
	// Load parses a rates document addressed by path (file path or
	// object key, depending on the implementation).
	Load(ctx context.Context, path string) (*Table, error)
}

// ratesDocument is the on-disk JSON shape:
//
//	{"rates": {"yangon": 3000, "mandalay": 5000}, "default": 7000}
type ratesDocument struct {
	Rates   map[string]int64 `json:"rates"`
	Default *int64           `json:"default"`
}

func decodeRates(r io.Reader) (*Table, error) {
	var doc ratesDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode rates document: %w", err)
	}
	if len(doc.Rates) == 0 {
		return nil, fmt.Errorf("rates document contains no cities")
	}
	fallback := DefaultFee
	if doc.Default != nil {
		fallback = *doc.Default
	}
	return NewTable(doc.Rates, fallback), nil
}

// fileLoader implements Loader for local JSON rate files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based rates loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "shipping-loader").Logger(),
	}
}

// Load reads a JSON rates file and returns a Table.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Table, error) {
	l.logger.Info().Str("file", filePath).Msg("loading shipping rates file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open rates file")
		return nil, fmt.Errorf("failed to open rates file %s: %w", filePath, err)
	}
	defer file.Close()

	table, err := decodeRates(file)
	if err != nil {
		return nil, fmt.Errorf("invalid rates file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("cities", table.Size()).
		Msg("shipping rates loaded")

	return table, nil
}
