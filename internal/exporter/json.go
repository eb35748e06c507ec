package exporter

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "finstmt/internal/errors"
	"finstmt/pkg/contracts"
	"finstmt/pkg/contracts/domain"
)

// statementDocument is the JSON shape written per extracted statement.
type statementDocument struct {
	Format      string                     `json:"format"`
	GeneratedAt string                     `json:"generated_at"`
	Statement   domain.FinancialStatement  `json:"statement"`
	LineItems   []domain.FinancialLineItem `json:"line_items"`
	Monthly     []domain.MonthlyMetrics    `json:"monthly_metrics"`
	Warnings    []warningDocument          `json:"warnings,omitempty"`
}

type warningDocument struct {
	Code    domain.WarningCode `json:"code"`
	Message string             `json:"message"`
}

// JSONWriter writes whole extraction results as JSON documents.
type JSONWriter struct {
	logger *slog.Logger
}

// NewJSONWriter creates a new JSON writer instance
func NewJSONWriter(logger *slog.Logger) *JSONWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONWriter{logger: logger}
}

// WriteStatement writes one statement with its line items, monthly series
// and accumulated warnings to path.
func (w *JSONWriter) WriteStatement(path string, stmt domain.FinancialStatement,
	items []domain.FinancialLineItem, monthly []domain.MonthlyMetrics, warnings []domain.Warning) error {

	w.logger.Info("writing JSON file",
		slog.String("path", path),
		slog.Int("line_item_count", len(items)),
		slog.Int("warning_count", len(warnings)))

	doc := statementDocument{
		Format:      contracts.DataFormatVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Statement:   stmt,
		LineItems:   items,
		Monthly:     monthly,
	}
	for _, warn := range warnings {
		doc.Warnings = append(doc.Warnings, warningDocument{Code: warn.Code(), Message: warn.Message()})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create JSON file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return apperrors.NewStorageError("failed to encode statement to JSON", err)
	}
	return nil
}
