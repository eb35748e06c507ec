package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatementType identifies the kind of financial statement a template reads.
type StatementType string

const (
	StatementProfitLoss   StatementType = "profit_loss"
	StatementCashFlow     StatementType = "cash_flow"
	StatementBalanceSheet StatementType = "balance_sheet"
)

// ColumnRole identifies what a concept column contains.
type ColumnRole string

const (
	RoleAccountCode ColumnRole = "account_code"
	RoleAccountName ColumnRole = "account_name"
	RoleDescription ColumnRole = "description"
)

// PeriodType identifies the granularity of a period column.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
	PeriodYTD     PeriodType = "ytd"
)

// Units is the scale factor the sheet's figures are expressed in.
type Units string

const (
	UnitsNormal    Units = "normal"
	UnitsThousands Units = "thousands"
	UnitsMillions  Units = "millions"
)

// ExpenseSign declares how the sheet stores expense figures. The canonical
// model always carries expenses negative; sheets that store expenses as
// positive magnitudes are negated at read time. The convention is declared
// per template, never inferred from data.
type ExpenseSign string

const (
	ExpenseSignNegative ExpenseSign = "negative"
	ExpenseSignPositive ExpenseSign = "positive"
)

// ConceptColumn maps a worksheet column to a concept role.
type ConceptColumn struct {
	ColumnIndex int        `json:"column_index" validate:"min=0"`
	Role        ColumnRole `json:"role" validate:"required,oneof=account_code account_name description"`
}

// PeriodColumn maps a worksheet column to a reporting period.
type PeriodColumn struct {
	ColumnIndex int        `json:"column_index" validate:"min=0"`
	PeriodLabel string     `json:"period_label" validate:"required"`
	PeriodType  PeriodType `json:"period_type" validate:"required,oneof=month quarter year ytd"`
	PeriodStart time.Time  `json:"period_start"`
}

// DataRange bounds the worksheet region containing account rows.
// Rows and columns are zero-based and inclusive.
type DataRange struct {
	StartRow int `json:"start_row" validate:"min=0"`
	EndRow   int `json:"end_row" validate:"min=0"`
	StartCol int `json:"start_col" validate:"min=0"`
	EndCol   int `json:"end_col" validate:"min=0"`
}

// Named fixed-row metrics a template may locate in the sheet.
const (
	MetricTotalIncome       = "totalIncome"
	MetricTotalExpense      = "totalExpense"
	MetricFinalBalance      = "finalBalance"
	MetricLowestBalance     = "lowestBalance"
	MetricMonthlyGeneration = "monthlyGeneration"
)

// MappingTemplate describes how to read one company's spreadsheet layout
// into canonical data. Templates are versioned by re-save and soft-deleted
// via IsActive so statements can keep referencing them.
type MappingTemplate struct {
	ID            uuid.UUID     `json:"id"`
	CompanyID     uuid.UUID     `json:"company_id"`
	Name          string        `json:"name"`
	StatementType StatementType `json:"statement_type" validate:"required,oneof=profit_loss cash_flow balance_sheet"`

	ConceptColumns []ConceptColumn `json:"concept_columns" validate:"dive"`
	PeriodColumns  []PeriodColumn  `json:"period_columns" validate:"dive"`
	DataRange      DataRange       `json:"data_range"`

	// FixedRowMap maps a named metric (MetricTotalIncome, ...) to the
	// zero-based worksheet row holding its precomputed values. When
	// present the engine extracts in fixed-row mode.
	FixedRowMap map[string]int `json:"fixed_row_map,omitempty"`

	HeaderRow   int         `json:"header_row" validate:"min=0"`
	Currency    string      `json:"currency" validate:"required,len=3"`
	Units       Units       `json:"units" validate:"required,oneof=normal thousands millions"`
	Locale      string      `json:"locale" validate:"required"`
	ExpenseSign ExpenseSign `json:"expense_sign" validate:"required,oneof=negative positive"`

	IsDefault  bool      `json:"is_default"`
	IsActive   bool      `json:"is_active"`
	Version    int       `json:"version"`
	UsageCount int       `json:"usage_count"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`

	// NeedsConfirmation marks auto-detected templates that have not been
	// confirmed by a user. MissingRoles lists required roles the
	// auto-mapper could not resolve.
	NeedsConfirmation bool     `json:"needs_confirmation,omitempty"`
	MissingRoles      []string `json:"missing_roles,omitempty"`
}

// FixedRowMode reports whether the template drives fixed-row extraction.
func (t *MappingTemplate) FixedRowMode() bool {
	return len(t.FixedRowMap) > 0
}

// ConceptColumn returns the first concept column with the given role.
func (t *MappingTemplate) ConceptColumn(role ColumnRole) (ConceptColumn, bool) {
	for _, c := range t.ConceptColumns {
		if c.Role == role {
			return c, true
		}
	}
	return ConceptColumn{}, false
}
