package shipping

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCost(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		city string
		want int64
	}{
		{"Yangon", 3000},
		{"yangon", 3000},
		{"YANGON", 3000},
		{"MANDALAY", 5000},
		{"Naypyitaw", 6000},
		{"  yangon  ", 3000},
		{"unknown-city", 7000},
		{"", 7000},
	}

	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Cost(tt.city))
		})
	}
}

func TestNewTable_NormalisesKeys(t *testing.T) {
	table := NewTable(map[string]int64{"  Bago ": 4000}, 9000)

	assert.Equal(t, int64(4000), table.Cost("bago"))
	assert.Equal(t, int64(4000), table.Cost("BAGO"))
	assert.Equal(t, int64(9000), table.Cost("elsewhere"))
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.json")
	content := `{"rates": {"Yangon": 3500, "Bago": 4500}, "default": 8000}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := NewFileLoader(zerolog.Nop())
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, int64(3500), table.Cost("yangon"))
	assert.Equal(t, int64(4500), table.Cost("BAGO"))
	assert.Equal(t, int64(8000), table.Cost("mandalay"))
	assert.Equal(t, 2, table.Size())
}

func TestFileLoader_Load_DefaultFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rates": {"yangon": 3000}}`), 0o644))

	loader := NewFileLoader(zerolog.Nop())
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, DefaultFee, table.Cost("nowhere"))
}

func TestFileLoader_Load_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(ctx, filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
		_, err := loader.Load(ctx, path)
		assert.Error(t, err)
	})

	t.Run("empty rates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"rates": {}}`), 0o644))
		_, err := loader.Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no cities")
	})
}
