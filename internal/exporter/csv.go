// Package exporter writes extracted statements to CSV and JSON files for
// downstream consumption. Amounts are emitted as plain decimal strings;
// currency symbols and locale formatting belong to the presentation layer.
package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	apperrors "finstmt/internal/errors"
	"finstmt/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteMonthly writes the monthly metrics series to path.
func (w *CSVWriter) WriteMonthly(path string, monthly []domain.MonthlyMetrics) error {
	header := []string{
		"Period", "TotalIncome", "TotalExpense", "FinalBalance",
		"LowestBalance", "MonthlyGeneration", "Revenue", "Costs",
		"Cashflow", "CumulativeCash",
	}
	records := make([][]string, 0, len(monthly))
	for _, m := range monthly {
		records = append(records, []string{
			m.PeriodKey,
			m.TotalIncome.String(),
			m.TotalExpense.String(),
			m.FinalBalance.String(),
			m.LowestBalance.String(),
			m.MonthlyGeneration.String(),
			m.Revenue.String(),
			m.Costs.String(),
			m.Cashflow.String(),
			m.CumulativeCash.String(),
		})
	}
	return w.write(path, header, records)
}

// WriteLineItems writes extracted line items to path.
func (w *CSVWriter) WriteLineItems(path string, items []domain.FinancialLineItem) error {
	header := []string{
		"Period", "AccountCode", "AccountName", "Category", "Amount",
		"IsSubtotal", "IsTotal", "DisplayOrder", "Confidence", "OriginalText",
	}
	records := make([][]string, 0, len(items))
	for _, it := range items {
		records = append(records, []string{
			it.PeriodKey,
			it.AccountCode,
			it.AccountName,
			string(it.Category),
			it.Amount.String(),
			strconv.FormatBool(it.IsSubtotal),
			strconv.FormatBool(it.IsTotal),
			strconv.Itoa(it.DisplayOrder),
			strconv.FormatFloat(it.ConfidenceScore, 'f', 2, 64),
			it.OriginalText,
		})
	}
	return w.write(path, header, records)
}

func (w *CSVWriter) write(path string, header []string, records [][]string) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return apperrors.NewStorageError("failed to write CSV header row", err)
	}
	for _, rec := range records {
		if err := writer.Write(rec); err != nil {
			return apperrors.NewStorageError("failed to write CSV data row", err)
		}
	}
	return nil
}
