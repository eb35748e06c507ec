// Package mapping validates mapping templates and stores them. A template
// is the single source of layout truth for extraction: the engine itself
// carries no row or column literals.
package mapping

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "finstmt/internal/errors"
	"finstmt/pkg/contracts/domain"
)

var validate = validator.New()

// Validate checks struct tags plus the cross-field invariants a tag cannot
// express: period columns strictly increasing by column index, no
// duplicate period labels, data range start before end.
func Validate(t *domain.MappingTemplate) error {
	if err := validate.Struct(t); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("template failed validation: %v", err))
	}

	if len(t.PeriodColumns) == 0 {
		return apperrors.NewValidationError("template has no period columns")
	}

	seenLabels := make(map[string]struct{}, len(t.PeriodColumns))
	prevCol := -1
	for i, pc := range t.PeriodColumns {
		if pc.ColumnIndex <= prevCol {
			return apperrors.NewValidationError(
				fmt.Sprintf("period column %d at index %d is not strictly increasing (previous %d)",
					i, pc.ColumnIndex, prevCol))
		}
		prevCol = pc.ColumnIndex

		if _, dup := seenLabels[pc.PeriodLabel]; dup {
			return apperrors.NewValidationError(
				fmt.Sprintf("duplicate period label %q", pc.PeriodLabel))
		}
		seenLabels[pc.PeriodLabel] = struct{}{}
	}

	if t.DataRange.EndRow < t.DataRange.StartRow {
		return apperrors.NewValidationError(
			fmt.Sprintf("data range end row %d before start row %d",
				t.DataRange.EndRow, t.DataRange.StartRow))
	}
	if t.DataRange.EndCol < t.DataRange.StartCol {
		return apperrors.NewValidationError(
			fmt.Sprintf("data range end col %d before start col %d",
				t.DataRange.EndCol, t.DataRange.StartCol))
	}

	// Aggregation mode classifies rows by sign, which only works when the
	// sheet stores expenses negative. Unsigned-expense sheets must carry
	// fixed rows so the sheet's own totals encode direction.
	if t.ExpenseSign == domain.ExpenseSignPositive && len(t.FixedRowMap) == 0 {
		return apperrors.NewValidationError("positive expense convention requires a fixed row map")
	}

	for metric := range t.FixedRowMap {
		switch metric {
		case domain.MetricTotalIncome, domain.MetricTotalExpense, domain.MetricFinalBalance,
			domain.MetricLowestBalance, domain.MetricMonthlyGeneration:
		default:
			return apperrors.NewValidationError(fmt.Sprintf("unknown fixed-row metric %q", metric))
		}
	}

	return nil
}
