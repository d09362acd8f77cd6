package shipping

import "strings"

// Rates resolves a destination city to a flat shipping fee in integer
// currency units.
type Rates interface {
	// Cost returns the fee for the given city. Matching is
	// case-insensitive; unknown cities get the default fee.
	Cost(city string) int64
}

// Table is a static city -> fee mapping with a fallback fee.
type Table struct {
	rates    map[string]int64
	fallback int64
}

// DefaultFee applies to any city not present in the table.
const DefaultFee int64 = 7000

// DefaultTable returns the built-in rate table used when no rates file is
// configured.
func DefaultTable() *Table {
	return NewTable(map[string]int64{
		"yangon":    3000,
		"mandalay":  5000,
		"naypyitaw": 6000,
	}, DefaultFee)
}

// NewTable builds a Table. City keys are normalised to lowercase.
func NewTable(rates map[string]int64, fallback int64) *Table {
	normalised := make(map[string]int64, len(rates))
	for city, fee := range rates {
		normalised[strings.ToLower(strings.TrimSpace(city))] = fee
	}
	return &Table{rates: normalised, fallback: fallback}
}

// Cost returns the fee for the given city.
func (t *Table) Cost(city string) int64 {
	if fee, ok := t.rates[strings.ToLower(strings.TrimSpace(city))]; ok {
		return fee
	}
	return t.fallback
}

// Size returns the number of cities in the table.
func (t *Table) Size() int {
	return len(t.rates)
}
