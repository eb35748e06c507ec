package extract

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// subtotalPrefixes mark account rows that carry a sheet-computed subtotal
// of the rows above them rather than a raw account balance.
var subtotalPrefixes = []string{"total", "subtotal"}

// extractAggregated sums raw account rows per period. Positive amounts
// accumulate into revenue, negative amounts into costs (as a positive
// magnitude); cashflow is revenue minus costs. The canonical convention is
// expenses stored negative — templates for sheets that store unsigned
// expense magnitudes must use fixed-row mode instead, because row
// direction cannot be known without the sheet's own totals.
func (e *Engine) extractAggregated(grid *workbook.Grid, tpl *domain.MappingTemplate, periods []period, res *Result) {
	nameCol := tpl.DataRange.StartCol
	if c, ok := tpl.ConceptColumn(domain.RoleAccountName); ok {
		nameCol = c.ColumnIndex
	}
	codeCol := -1
	if c, ok := tpl.ConceptColumn(domain.RoleAccountCode); ok {
		codeCol = c.ColumnIndex
	}

	type bucket struct {
		revenue decimal.Decimal
		costs   decimal.Decimal
	}
	buckets := make([]bucket, len(periods))

	// Per-period reconciliation state: the child items accumulated since
	// the last subtotal row, and their running sum.
	childIDs := make([][]int, len(periods)) // indexes into res.LineItems
	childSums := make([]decimal.Decimal, len(periods))

	displayOrder := 0
	for row := tpl.DataRange.StartRow; row <= tpl.DataRange.EndRow && row < grid.RowCount(); row++ {
		name := grid.Cell(row, nameCol)
		if name == "" {
			continue
		}
		subtotal := isSubtotalLabel(name)
		code := ""
		if codeCol >= 0 {
			code = grid.Cell(row, codeCol)
		}

		for pi, p := range periods {
			raw := grid.Cell(row, p.col)
			amount, parsed := e.readAmount(grid, tpl, row, p.col, res)

			item := domain.FinancialLineItem{
				ID:           deterministicID("item", tpl.ID.String(), p.key, name, strconv.Itoa(row)),
				AccountCode:  code,
				AccountName:  name,
				PeriodKey:    p.key,
				Amount:       amount,
				IsSubtotal:   subtotal,
				DisplayOrder: displayOrder,
				OriginalText: raw,
			}
			item.ConfidenceScore = 1.0
			if !parsed {
				item.ConfidenceScore = 0.25
			}
			switch {
			case subtotal:
				item.Category = domain.CategoryOther
				item.IsCalculated = true
			case amount.IsNegative():
				item.Category = domain.CategoryExpense
			case amount.IsPositive():
				item.Category = domain.CategoryRevenue
			default:
				item.Category = domain.CategoryOther
			}
			res.LineItems = append(res.LineItems, item)
			idx := len(res.LineItems) - 1

			if subtotal {
				// Link the children accumulated since the previous
				// subtotal and reconcile their sum against the sheet's.
				for _, ci := range childIDs[pi] {
					parentID := item.ID
					res.LineItems[ci].ParentItemID = &parentID
				}
				if len(childIDs[pi]) > 0 && !withinEpsilon(childSums[pi], amount) {
					res.Warnings = append(res.Warnings, domain.TotalMismatchWarning{
						Metric:    name,
						PeriodKey: p.key,
						Reported:  amount,
						Computed:  childSums[pi],
					})
				}
				childIDs[pi] = nil
				childSums[pi] = decimal.Zero
				continue
			}

			childIDs[pi] = append(childIDs[pi], idx)
			childSums[pi] = childSums[pi].Add(amount)

			if amount.IsPositive() {
				buckets[pi].revenue = buckets[pi].revenue.Add(amount)
			} else if amount.IsNegative() {
				buckets[pi].costs = buckets[pi].costs.Add(amount.Abs())
			}
		}
		displayOrder++
	}

	// Emit buckets in ascending date order with the cumulative sum seeded
	// at zero and carried strictly in that order.
	cumulative := decimal.Zero
	for pi, p := range periods {
		cashflow := buckets[pi].revenue.Sub(buckets[pi].costs)
		cumulative = cumulative.Add(cashflow)
		res.Monthly = append(res.Monthly, domain.MonthlyMetrics{
			Date:              p.date,
			PeriodKey:         p.key,
			TotalIncome:       buckets[pi].revenue,
			TotalExpense:      buckets[pi].costs.Neg(),
			MonthlyGeneration: cashflow,
			Revenue:           buckets[pi].revenue,
			Costs:             buckets[pi].costs,
			Cashflow:          cashflow,
			CumulativeCash:    cumulative,
			FinalBalance:      cumulative,
			LowestBalance:     cumulative,
		})
	}
}

func isSubtotalLabel(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, p := range subtotalPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

