package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WarningCode identifies the kind of non-fatal extraction warning.
type WarningCode string

const (
	WarnNumericParse  WarningCode = "NUMERIC_PARSE"
	WarnTotalMismatch WarningCode = "TOTAL_MISMATCH"
)

// Warning is a non-fatal condition accumulated during extraction and
// returned alongside a successful result. Warnings are values, never
// errors: extraction continues past every one of them.
type Warning interface {
	Code() WarningCode
	Message() string
}

// NumericParseWarning records a cell whose text could not be coerced to a
// number. The value is treated as 0 and extraction continues.
type NumericParseWarning struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	Raw string `json:"raw"`
}

func (w NumericParseWarning) Code() WarningCode { return WarnNumericParse }

func (w NumericParseWarning) Message() string {
	return fmt.Sprintf("cell (%d,%d) %q is not numeric, defaulted to 0", w.Row, w.Col, w.Raw)
}

// TotalMismatchWarning records a computed total diverging from the sheet's
// reported total by more than the reconciliation epsilon.
type TotalMismatchWarning struct {
	Metric    string          `json:"metric"`
	PeriodKey string          `json:"period_key"`
	Reported  decimal.Decimal `json:"reported"`
	Computed  decimal.Decimal `json:"computed"`
}

func (w TotalMismatchWarning) Code() WarningCode { return WarnTotalMismatch }

func (w TotalMismatchWarning) Message() string {
	return fmt.Sprintf("%s for %s: reported %s, computed %s",
		w.Metric, w.PeriodKey, w.Reported.String(), w.Computed.String())
}
