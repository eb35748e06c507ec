package extract

import (
	"strconv"

	"github.com/shopspring/decimal"

	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// extractFixedRows reads the named metrics directly from their configured
// rows. This mode trusts the sheet's own precomputed subtotals instead of
// re-deriving them, so it is strictly preferable when a template carries a
// fixed row map.
//
// Sign handling: templates with the negative convention carry totalExpense
// already signed and monthly generation is income plus expense as-is. The
// positive convention means the sheet stores expense magnitudes unsigned;
// those are negated once at read time so the canonical model is uniform.
// The convention comes from the template alone, never from the data.
func (e *Engine) extractFixedRows(grid *workbook.Grid, tpl *domain.MappingTemplate, periods []period, res *Result) {
	read := func(metric string, col int, res *Result) (decimal.Decimal, bool) {
		row, ok := tpl.FixedRowMap[metric]
		if !ok {
			return decimal.Zero, false
		}
		v, _ := e.readAmount(grid, tpl, row, col, res)
		return v, true
	}

	cumulative := decimal.Zero
	for _, p := range periods {
		income, hasIncome := read(domain.MetricTotalIncome, p.col, res)
		expense, hasExpense := read(domain.MetricTotalExpense, p.col, res)
		finalBalance, _ := read(domain.MetricFinalBalance, p.col, res)
		lowestBalance, _ := read(domain.MetricLowestBalance, p.col, res)
		reportedGen, hasGen := read(domain.MetricMonthlyGeneration, p.col, res)

		if tpl.ExpenseSign == domain.ExpenseSignPositive {
			expense = expense.Neg()
		}

		computedGen := income.Add(expense)
		generation := computedGen
		if hasGen {
			// The sheet's own figure wins, but divergence beyond the
			// epsilon is surfaced.
			if hasIncome && hasExpense && !withinEpsilon(reportedGen, computedGen) {
				res.Warnings = append(res.Warnings, domain.TotalMismatchWarning{
					Metric:    domain.MetricMonthlyGeneration,
					PeriodKey: p.key,
					Reported:  reportedGen,
					Computed:  computedGen,
				})
			}
			generation = reportedGen
		}

		cumulative = cumulative.Add(generation)
		res.Monthly = append(res.Monthly, domain.MonthlyMetrics{
			Date:              p.date,
			PeriodKey:         p.key,
			TotalIncome:       income,
			TotalExpense:      expense,
			FinalBalance:      finalBalance,
			LowestBalance:     lowestBalance,
			MonthlyGeneration: generation,
			Revenue:           income,
			Costs:             expense.Abs(),
			Cashflow:          generation,
			CumulativeCash:    cumulative,
		})

		res.LineItems = append(res.LineItems,
			e.metricItem(tpl, p, domain.MetricTotalIncome, income, domain.CategoryRevenue),
			e.metricItem(tpl, p, domain.MetricTotalExpense, expense, domain.CategoryExpense),
			e.metricItem(tpl, p, domain.MetricFinalBalance, finalBalance, domain.CategoryBalance),
			e.metricItem(tpl, p, domain.MetricLowestBalance, lowestBalance, domain.CategoryBalance),
			e.metricItem(tpl, p, domain.MetricMonthlyGeneration, generation, domain.CategoryBalance),
		)
	}
}

func (e *Engine) metricItem(tpl *domain.MappingTemplate, p period, metric string, amount decimal.Decimal, cat domain.LineItemCategory) domain.FinancialLineItem {
	row := tpl.FixedRowMap[metric]
	return domain.FinancialLineItem{
		ID:              deterministicID("metric", tpl.ID.String(), p.key, metric),
		AccountName:     metric,
		Category:        cat,
		PeriodKey:       p.key,
		Amount:          amount,
		IsTotal:         true,
		IsCalculated:    metric == domain.MetricMonthlyGeneration,
		DisplayOrder:    row,
		ConfidenceScore: 1.0,
		OriginalText:    "row " + strconv.Itoa(row),
	}
}
