package workbook

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"finstmt/internal/errors"
)

// Grid is one worksheet's cells as an in-memory matrix of raw strings.
// Out-of-range access returns the empty string, so callers never need
// bounds checks while scanning.
type Grid struct {
	Sheet string
	rows  [][]string
}

// NewGrid builds a grid from raw rows. Intended for tests and for callers
// that already hold a parsed sheet.
func NewGrid(sheet string, rows [][]string) *Grid {
	return &Grid{Sheet: sheet, rows: rows}
}

// Cell returns the trimmed raw text at (row, col), or "" when out of range.
func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// RowCount returns the number of rows the sheet carries.
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// MaxCol returns the widest row's column count.
func (g *Grid) MaxCol() int {
	max := 0
	for _, r := range g.rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

// RowIsBlank reports whether every cell in the row is empty.
func (g *Grid) RowIsBlank(row int) bool {
	if row < 0 || row >= len(g.rows) {
		return true
	}
	for _, cell := range g.rows[row] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Workbook holds every sheet of one spreadsheet file.
type Workbook struct {
	SourceFile string
	Sheets     []*Grid
}

// Grid returns the named sheet, or nil when absent.
func (w *Workbook) Grid(sheet string) *Grid {
	for _, g := range w.Sheets {
		if g.Sheet == sheet {
			return g
		}
	}
	return nil
}

// First returns the first non-empty sheet, or nil for an empty workbook.
func (w *Workbook) First() *Grid {
	for _, g := range w.Sheets {
		if g.RowCount() > 0 {
			return g
		}
	}
	return nil
}

// OpenFile loads an xlsx workbook from disk into memory. The whole file is
// read before returning; there is no streaming access.
func OpenFile(path string, logger *slog.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()
	return readWorkbook(f, path, logger)
}

// OpenBytes loads an xlsx workbook from an in-memory byte slice, the shape
// upload handlers hand bytes in.
func OpenBytes(data []byte, sourceName string, logger *slog.Logger) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()
	return readWorkbook(f, sourceName, logger)
}

func readWorkbook(f *excelize.File, source string, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}

	wb := &Workbook{SourceFile: source}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			logger.Warn("skipping unreadable sheet",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		wb.Sheets = append(wb.Sheets, NewGrid(name, rows))
	}

	if len(wb.Sheets) == 0 {
		return nil, errors.NewParsingError("workbook contains no readable sheets", nil)
	}

	logger.Info("workbook loaded",
		slog.String("source", source),
		slog.Int("sheet_count", len(wb.Sheets)))

	return wb, nil
}
