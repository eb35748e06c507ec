package detect

import (
	"strings"

	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// metricVocabularies locate precomputed subtotal rows by their label in
// the concept column, English and Spanish. These labels come from the
// standard cashflow layouts this engine ingests ("Total Income" /
// "TOTAL INGRESOS" and friends).
var metricVocabularies = map[string][]string{
	domain.MetricTotalIncome:       {"total income", "total ingresos", "ingresos totales"},
	domain.MetricTotalExpense:      {"total expense", "total egresos", "egresos totales", "gastos totales"},
	domain.MetricFinalBalance:      {"ending balance", "final balance", "saldo final"},
	domain.MetricLowestBalance:     {"lowest balance", "saldo minimo", "saldo mínimo"},
	domain.MetricMonthlyGeneration: {"net cash flow", "monthly generation", "flujo neto", "generacion mensual", "generación mensual"},
}

// SuggestFixedRows scans the concept column for named metric labels and
// proposes a fixedRowMap. Statements that carry their own computed
// subtotal rows are extracted in fixed-row mode, which trusts the source's
// totals instead of re-deriving them. Returns nil when no metric row was
// recognized.
func SuggestFixedRows(grid *workbook.Grid, conceptCol int) map[string]int {
	fixed := make(map[string]int)

	for row := 0; row < grid.RowCount(); row++ {
		label := strings.ToLower(grid.Cell(row, conceptCol))
		if label == "" {
			continue
		}
		for metric, vocab := range metricVocabularies {
			if _, taken := fixed[metric]; taken {
				continue
			}
			for _, kw := range vocab {
				if strings.Contains(label, kw) {
					fixed[metric] = row
					break
				}
			}
		}
	}

	if len(fixed) == 0 {
		return nil
	}
	return fixed
}
