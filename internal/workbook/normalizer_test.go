package workbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finstmt/pkg/contracts/domain"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		locale string
		want   string
		ok     bool
	}{
		{"plain integer", "1000", "en", "1000", true},
		{"us grouping with symbol", "$1,234.56", "en", "1234.56", true},
		{"european grouping", "1.234,56", "es", "1234.56", true},
		{"negative sign", "-200", "en", "-200", true},
		{"parenthesized negative", "(1,500.25)", "en", "-1500.25", true},
		{"euro symbol", "€2.500,00", "es", "2500", true},
		{"pound symbol", "£99.99", "en", "99.99", true},
		{"compound prefix", "US$ 61,715,728.02", "en", "61715728.02", true},
		{"percent", "12%", "en", "0.12", true},
		{"whitespace only", "   ", "en", "0", false},
		{"plain text", "Total Income", "en", "0", false},
		{"symbol without digits", "$", "en", "0", false},
		{"spanish negative", "-69.286.881,42", "es", "-69286881.42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.raw, tt.locale)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"full english month", "January 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"short english month", "Jun-24", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"spanish abbreviation", "Ene-24", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"spanish full month", "Diciembre 2024", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"iso month", "2024-03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"iso date", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"excel serial", "45292", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"small integer is not a date", "1000", time.Time{}, false},
		{"plain text", "Dollars", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want.Year(), got.Year())
				assert.Equal(t, tt.want.Month(), got.Month())
			}
		})
	}
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.CellKind
	}{
		{"empty", "", domain.CellEmpty},
		{"whitespace", "   ", domain.CellEmpty},
		{"month header", "Ene-24", domain.CellDate},
		{"amount", "$1,234.56", domain.CellNumber},
		{"label", "Total Expenses", domain.CellText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCell(tt.raw, LocaleEN)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestNormalizeCell_IsPure(t *testing.T) {
	// Same input, same output — the normalizer holds no state.
	a := NormalizeCell("$1,234.56", LocaleEN)
	b := NormalizeCell("$1,234.56", LocaleEN)
	assert.Equal(t, a, b)
	assert.True(t, a.Number.Equal(b.Number))
}

func TestGrid_Cell(t *testing.T) {
	g := NewGrid("Sheet1", [][]string{
		{"Concepto", " Ene-24 ", "Feb-24"},
		{"Ventas", "1000"},
	})

	assert.Equal(t, "Concepto", g.Cell(0, 0))
	assert.Equal(t, "Ene-24", g.Cell(0, 1), "cells are trimmed")
	assert.Equal(t, "", g.Cell(1, 2), "short row reads empty")
	assert.Equal(t, "", g.Cell(9, 0), "row out of range reads empty")
	assert.Equal(t, "", g.Cell(-1, -1))
	assert.Equal(t, 2, g.RowCount())
	assert.Equal(t, 3, g.MaxCol())
}

func TestGrid_RowIsBlank(t *testing.T) {
	g := NewGrid("Sheet1", [][]string{
		{"", "  ", ""},
		{"", "x"},
	})

	assert.True(t, g.RowIsBlank(0))
	assert.False(t, g.RowIsBlank(1))
	assert.True(t, g.RowIsBlank(99))
}
