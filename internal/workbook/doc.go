// Package workbook loads spreadsheet files into an in-memory grid of raw
// cells and provides the cell value normalizer that turns raw cell text
// into typed values.
//
// The normalizer is the only place raw spreadsheet values are interpreted:
// every other component consumes the closed domain.CellValue variant it
// produces. Normalization is pure and total; a cell that cannot be coerced
// to the requested type degrades to Empty rather than failing.
package workbook
