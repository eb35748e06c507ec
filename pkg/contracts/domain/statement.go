package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialStatement is one extracted statement for one company and period
// range. Statements and their line items are created atomically per
// successful extraction and are immutable afterwards except for IsAudited.
type FinancialStatement struct {
	ID            uuid.UUID     `json:"id"`
	CompanyID     uuid.UUID     `json:"company_id"`
	TemplateID    uuid.UUID     `json:"template_id"`
	StatementType StatementType `json:"statement_type"`
	PeriodStart   time.Time     `json:"period_start"`
	PeriodEnd     time.Time     `json:"period_end"`
	Currency      string        `json:"currency"`
	SourceFile    string        `json:"source_file"`
	IsAudited     bool          `json:"is_audited"`
	CreatedAt     time.Time     `json:"created_at"`
}

// LineItemCategory is the coarse classification of a line item.
type LineItemCategory string

const (
	CategoryRevenue LineItemCategory = "revenue"
	CategoryExpense LineItemCategory = "expense"
	CategoryBalance LineItemCategory = "balance"
	CategoryOther   LineItemCategory = "other"
)

// FinancialLineItem is one dated account row extracted from a statement.
// Amount is signed: revenue positive, expenses negative. ParentItemID forms
// a subtotal tree, never a cycle.
type FinancialLineItem struct {
	ID           uuid.UUID        `json:"id"`
	StatementID  uuid.UUID        `json:"statement_id"`
	AccountCode  string           `json:"account_code,omitempty"`
	AccountName  string           `json:"account_name"`
	Category     LineItemCategory `json:"category"`
	Subcategory  string           `json:"subcategory,omitempty"`
	PeriodKey    string           `json:"period_key"`
	Amount       decimal.Decimal  `json:"amount"`
	IsSubtotal   bool             `json:"is_subtotal"`
	IsTotal      bool             `json:"is_total"`
	IsCalculated bool             `json:"is_calculated"`
	ParentItemID *uuid.UUID       `json:"parent_item_id,omitempty"`
	DisplayOrder int              `json:"display_order"`
	// ConfidenceScore is in [0,1]; 1.0 for cleanly parsed cells, lower
	// when the value was defaulted after a parse failure.
	ConfidenceScore float64 `json:"confidence_score"`
	OriginalText    string  `json:"original_text,omitempty"`
}

// MonthlyMetrics is the derived per-period summary, one per detected
// period, ordered by date ascending. Costs carries a positive magnitude;
// TotalExpense keeps the sheet's signed value in fixed-row mode.
type MonthlyMetrics struct {
	Date      time.Time `json:"date"`
	PeriodKey string    `json:"period_key"`

	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpense      decimal.Decimal `json:"total_expense"`
	FinalBalance      decimal.Decimal `json:"final_balance"`
	LowestBalance     decimal.Decimal `json:"lowest_balance"`
	MonthlyGeneration decimal.Decimal `json:"monthly_generation"`

	Revenue        decimal.Decimal `json:"revenue"`
	Costs          decimal.Decimal `json:"costs"`
	Cashflow       decimal.Decimal `json:"cashflow"`
	CumulativeCash decimal.Decimal `json:"cumulative_cash"`
}
