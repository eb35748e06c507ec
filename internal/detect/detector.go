// Package detect locates the structure of a financial statement worksheet:
// the run of date-bearing period columns, the boundary between currency
// sections, and — when no mapping template exists yet — a best-effort
// auto-mapped template for the caller to confirm.
package detect

import (
	"log/slog"
	"strings"
	"time"

	"finstmt/internal/errors"
	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// sectionBoundaryMarkers are text cells that signal the end of one
// currency's column block and the start of another. Hitting one is a hard
// stop for the period scan, not merely an excluded column.
var sectionBoundaryMarkers = []string{
	"dollars", "usd", "us$", "pesos", "ars", "euros", "eur", "moneda",
	"currency", "dolares", "dólares",
}

// Period is one accepted date-bearing column.
type Period struct {
	ColumnIndex int
	Date        time.Time
	Key         string // yyyy-MM
	Label       string // human label, e.g. "January 2024"
}

// MonthKey normalizes a date to its yyyy-MM period key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Detector scans worksheets for period columns.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a structure detector.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// DetectPeriods scans headerRow left to right from startCol, accepting
// columns while their header cell normalizes to a date. The scan stops
// hard at the first section-boundary marker so it never bleeds into an
// adjacent currency block.
//
// Each accepted month key must be unique within the run; a repeat means
// the scan crossed into a second section or the headers are malformed,
// and the detector refuses to guess which occurrence is right.
func (d *Detector) DetectPeriods(grid *workbook.Grid, headerRow, startCol, maxCol int) ([]Period, error) {
	if maxCol <= 0 {
		maxCol = grid.MaxCol()
	}

	var periods []Period
	seen := make(map[string]int) // key -> column index

	for col := startCol; col < maxCol; col++ {
		raw := grid.Cell(headerRow, col)
		if IsSectionBoundary(raw) {
			d.logger.Debug("section boundary reached",
				slog.String("marker", raw),
				slog.Int("col", col))
			break
		}

		date, ok := workbook.ParseDate(raw)
		if !ok {
			// Non-date header: skip gaps before the run starts, stop once
			// the run is underway.
			if len(periods) > 0 {
				break
			}
			continue
		}

		key := MonthKey(date)
		if firstCol, dup := seen[key]; dup {
			return nil, errors.NewDuplicatePeriodError(key, firstCol, col)
		}
		seen[key] = col

		periods = append(periods, Period{
			ColumnIndex: col,
			Date:        time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC),
			Key:         key,
			Label:       date.Format("January 2006"),
		})
	}

	if len(periods) == 0 {
		return nil, errors.NewStructureDetectionError("no period columns found in header row").
			WithContext("header_row", headerRow).
			WithContext("start_col", startCol)
	}

	d.logger.Info("period columns detected",
		slog.String("sheet", grid.Sheet),
		slog.Int("count", len(periods)),
		slog.String("first", periods[0].Key),
		slog.String("last", periods[len(periods)-1].Key))

	return periods, nil
}

// IsSectionBoundary reports whether a header cell is a currency-section
// label. Comparison is case-insensitive on the whole trimmed cell.
func IsSectionBoundary(cell string) bool {
	s := strings.ToLower(strings.TrimSpace(cell))
	if s == "" {
		return false
	}
	for _, marker := range sectionBoundaryMarkers {
		if s == marker {
			return true
		}
	}
	return false
}

// PeriodColumns converts detected periods to template period columns.
func PeriodColumns(periods []Period) []domain.PeriodColumn {
	cols := make([]domain.PeriodColumn, 0, len(periods))
	for _, p := range periods {
		cols = append(cols, domain.PeriodColumn{
			ColumnIndex: p.ColumnIndex,
			PeriodLabel: p.Key,
			PeriodType:  domain.PeriodMonth,
			PeriodStart: p.Date,
		})
	}
	return cols
}
