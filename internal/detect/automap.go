package detect

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"finstmt/internal/errors"
	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// Role vocabularies for header-keyword matching, case-insensitive
// substring match, English and Spanish. First matching column wins.
var roleVocabularies = map[string][]string{
	"date":        {"date", "fecha", "periodo", "período"},
	"description": {"description", "descripcion", "descripción", "concept", "concepto", "item", "detail", "detalle"},
	"revenue":     {"revenue", "income", "ingreso", "venta", "sales"},
	"costs":       {"cost", "expense", "gasto", "egreso", "spend"},
}

// requiredRoles must resolve for a template to be usable without manual
// mapping.
var requiredRoles = []string{"description"}

// AutoMapper builds a best-effort mapping template from a worksheet with
// no saved template. The result always needs user confirmation before it
// is persisted.
type AutoMapper struct {
	detector *Detector
	logger   *slog.Logger
}

// NewAutoMapper creates an auto-mapper sharing the detector's scan logic.
func NewAutoMapper(logger *slog.Logger) *AutoMapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoMapper{detector: NewDetector(logger), logger: logger}
}

// AutoMapOptions bound the auto-mapping scan.
type AutoMapOptions struct {
	CompanyID     uuid.UUID
	StatementType domain.StatementType
	Locale        string
	Currency      string
	// MaxHeaderScanRows is how far down the sheet to look for a header
	// row before giving up. Zero means 10.
	MaxHeaderScanRows int
	// MaxColumns bounds the period scan. Zero means the full sheet width.
	MaxColumns int
}

// AutoMap proposes a template for the grid. It locates a header row,
// resolves concept roles by keyword, and detects period columns. Missing
// required roles leave the template flagged NeedsConfirmation with the
// unresolved roles listed; only a sheet with no detectable structure at
// all is a fatal ColumnMappingError.
func (m *AutoMapper) AutoMap(grid *workbook.Grid, opts AutoMapOptions) (*domain.MappingTemplate, error) {
	maxScan := opts.MaxHeaderScanRows
	if maxScan <= 0 {
		maxScan = 10
	}
	if maxScan > grid.RowCount() {
		maxScan = grid.RowCount()
	}

	headerRow, roleCols := m.findHeaderRow(grid, maxScan)
	if headerRow < 0 {
		return nil, errors.NewColumnMappingError("no header row recognized in sheet").
			WithContext("sheet", grid.Sheet)
	}

	periods, err := m.detector.DetectPeriods(grid, headerRow, 0, opts.MaxColumns)
	if err != nil {
		return nil, err
	}

	tpl := &domain.MappingTemplate{
		ID:            uuid.New(),
		CompanyID:     opts.CompanyID,
		Name:          "auto-detected " + grid.Sheet,
		StatementType: opts.StatementType,
		PeriodColumns: PeriodColumns(periods),
		HeaderRow:     headerRow,
		Currency:      defaultString(opts.Currency, "USD"),
		Units:         domain.UnitsNormal,
		Locale:        defaultString(opts.Locale, workbook.LocaleEN),
		ExpenseSign:   domain.ExpenseSignNegative,
		IsActive:      true,
		Version:       1,
		CreatedAt:     time.Now().UTC(),

		NeedsConfirmation: true,
	}

	if col, ok := roleCols["description"]; ok {
		tpl.ConceptColumns = append(tpl.ConceptColumns, domain.ConceptColumn{
			ColumnIndex: col,
			Role:        domain.RoleAccountName,
		})
	}

	for _, role := range requiredRoles {
		if _, ok := roleCols[role]; !ok {
			tpl.MissingRoles = append(tpl.MissingRoles, role)
		}
	}

	tpl.DataRange = domain.DataRange{
		StartRow: headerRow + 1,
		EndRow:   grid.RowCount() - 1,
		StartCol: 0,
		EndCol:   periods[len(periods)-1].ColumnIndex,
	}

	m.logger.Info("auto-mapped template proposed",
		slog.String("sheet", grid.Sheet),
		slog.Int("header_row", headerRow),
		slog.Int("period_count", len(tpl.PeriodColumns)),
		slog.Any("missing_roles", tpl.MissingRoles))

	return tpl, nil
}

// findHeaderRow scans the first rows for one whose cells match role
// vocabularies or normalize to dates. A row carrying at least one date
// column wins outright; a role-only row may be a title above the real
// header ("Concepto de flujo"), so it is kept only as a fallback while the
// scan continues. Returns the row and the resolved role columns, or -1
// when nothing matches.
func (m *AutoMapper) findHeaderRow(grid *workbook.Grid, maxScan int) (int, map[string]int) {
	fallbackRow := -1
	var fallbackRoles map[string]int

	for row := 0; row < maxScan; row++ {
		if grid.RowIsBlank(row) {
			continue
		}

		roleCols := matchRoles(grid, row)
		dateCols := 0
		for col := 0; col < grid.MaxCol(); col++ {
			cell := grid.Cell(row, col)
			if IsSectionBoundary(cell) {
				break
			}
			if _, ok := workbook.ParseDate(cell); ok {
				dateCols++
			}
		}

		if dateCols > 0 {
			return row, roleCols
		}
		if len(roleCols) > 0 && fallbackRow < 0 {
			fallbackRow = row
			fallbackRoles = roleCols
		}
	}
	return fallbackRow, fallbackRoles
}

// matchRoles resolves role vocabularies against one row. The first
// matching column wins per role.
func matchRoles(grid *workbook.Grid, row int) map[string]int {
	roleCols := make(map[string]int)
	for col := 0; col < grid.MaxCol(); col++ {
		header := strings.ToLower(grid.Cell(row, col))
		if header == "" {
			continue
		}
		for role, vocab := range roleVocabularies {
			if _, taken := roleCols[role]; taken {
				continue
			}
			for _, kw := range vocab {
				if strings.Contains(header, kw) {
					roleCols[role] = col
					break
				}
			}
		}
	}
	return roleCols
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
