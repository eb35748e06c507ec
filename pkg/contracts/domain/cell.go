package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CellKind discriminates the typed value held by a CellValue.
type CellKind string

const (
	CellEmpty  CellKind = "empty"
	CellText   CellKind = "text"
	CellNumber CellKind = "number"
	CellDate   CellKind = "date"
)

// CellValue is the closed, tagged variant produced by the cell normalizer.
// Exactly one of Text, Number, Date is meaningful, selected by Kind.
// Consumers switch on Kind instead of re-checking raw spreadsheet values.
type CellValue struct {
	Kind   CellKind        `json:"kind"`
	Text   string          `json:"text,omitempty"`
	Number decimal.Decimal `json:"number,omitempty"`
	Date   time.Time       `json:"date,omitempty"`
}

// EmptyCell returns the canonical empty cell value.
func EmptyCell() CellValue {
	return CellValue{Kind: CellEmpty}
}

// TextCell wraps a string value.
func TextCell(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

// NumberCell wraps a numeric value.
func NumberCell(d decimal.Decimal) CellValue {
	return CellValue{Kind: CellNumber, Number: d}
}

// DateCell wraps a date value.
func DateCell(t time.Time) CellValue {
	return CellValue{Kind: CellDate, Date: t}
}

// IsEmpty reports whether the cell holds no usable value.
func (c CellValue) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellText && c.Text == "")
}
