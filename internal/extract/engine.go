// Package extract implements the extraction engine: a single-pass,
// CPU-bound transformation of an in-memory worksheet under a mapping
// template into canonical line items and monthly metrics.
//
// The engine is stateless. Every call takes the workbook grid and the
// template as explicit inputs and returns a result value; nothing is
// retained between invocations, so concurrent extractions for different
// companies are fully independent.
package extract

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	apperrors "finstmt/internal/errors"
	"finstmt/internal/mapping"
	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// Epsilon is the reconciliation tolerance in absolute currency units.
var Epsilon = decimal.NewFromFloat(0.01)

// idNamespace seeds deterministic statement and line-item IDs so the same
// workbook under the same template always yields identical output.
var idNamespace = uuid.MustParse("8f3c6d5a-1f9b-4f70-9a34-2a7d6c1e0b42")

// Result is everything one extraction call produces. Warnings are
// non-fatal; a non-nil Result always means the extraction completed.
type Result struct {
	Statement domain.FinancialStatement
	LineItems []domain.FinancialLineItem
	Monthly   []domain.MonthlyMetrics
	Warnings  []domain.Warning
	// Template is the resolved template the extraction ran under, so a
	// caller that auto-detected it can persist it after confirmation.
	Template *domain.MappingTemplate
}

// Engine extracts statements from worksheet grids.
type Engine struct {
	logger       *slog.Logger
	extractions  metric.Int64Counter
	warningCount metric.Int64Counter
}

// NewEngine creates an extraction engine. Metrics are registered on the
// global otel meter provider, a no-op unless the embedding app wires one.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	meter := otel.Meter("finstmt/extract")
	extractions, _ := meter.Int64Counter("extract.statements",
		metric.WithDescription("Completed statement extractions"))
	warnings, _ := meter.Int64Counter("extract.warnings",
		metric.WithDescription("Non-fatal warnings accumulated during extraction"))
	return &Engine{logger: logger, extractions: extractions, warningCount: warnings}
}

// period is one resolved period column with its date.
type period struct {
	col  int
	date time.Time
	key  string
}

// Extract walks the grid under the template and produces the canonical
// result. Mode is selected by template shape: a fixedRowMap drives
// fixed-row extraction, otherwise rows are aggregated per period.
//
// Fatal errors abort immediately and carry the failing stage; warnings
// accumulate on the result and extraction always runs to completion past
// them.
func (e *Engine) Extract(ctx context.Context, grid *workbook.Grid, tpl *domain.MappingTemplate) (*Result, error) {
	if err := mapping.Validate(tpl); err != nil {
		return nil, err
	}

	periods, err := resolvePeriods(tpl)
	if err != nil {
		return nil, err
	}

	res := &Result{Template: tpl}
	if tpl.FixedRowMode() {
		e.extractFixedRows(grid, tpl, periods, res)
	} else {
		e.extractAggregated(grid, tpl, periods, res)
	}

	res.Statement = e.buildStatement(grid, tpl, periods)
	for i := range res.LineItems {
		res.LineItems[i].StatementID = res.Statement.ID
	}

	e.extractions.Add(ctx, 1)
	e.warningCount.Add(ctx, int64(len(res.Warnings)))
	e.logger.InfoContext(ctx, "extraction complete",
		slog.String("sheet", grid.Sheet),
		slog.String("statement_type", string(tpl.StatementType)),
		slog.Bool("fixed_row_mode", tpl.FixedRowMode()),
		slog.Int("period_count", len(periods)),
		slog.Int("line_item_count", len(res.LineItems)),
		slog.Int("warning_count", len(res.Warnings)))

	return res, nil
}

// resolvePeriods turns template period columns into dated periods sorted
// ascending by date. The cumulative cash sum is carried strictly in this
// order, never in column order.
//
// Distinct labels can resolve to the same month ("Jun-24" and "2024-06"),
// so uniqueness is checked on the resolved key here, not on the label.
func resolvePeriods(tpl *domain.MappingTemplate) ([]period, error) {
	periods := make([]period, 0, len(tpl.PeriodColumns))
	seen := make(map[string]int) // resolved key -> column index
	for _, pc := range tpl.PeriodColumns {
		date := pc.PeriodStart
		if date.IsZero() {
			parsed, ok := workbook.ParseDate(pc.PeriodLabel)
			if !ok {
				return nil, apperrors.NewStructureDetectionError(
					"period column label is not a date: " + pc.PeriodLabel)
			}
			date = parsed
		}
		date = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		key := date.Format("2006-01")
		if firstCol, dup := seen[key]; dup {
			return nil, apperrors.NewDuplicatePeriodError(key, firstCol, pc.ColumnIndex)
		}
		seen[key] = pc.ColumnIndex
		periods = append(periods, period{col: pc.ColumnIndex, date: date, key: key})
	}
	if len(periods) == 0 {
		return nil, apperrors.NewStructureDetectionError("template has no period columns")
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].date.Before(periods[j].date) })
	return periods, nil
}

// readAmount reads and scales one numeric cell. Unparsable non-empty text
// appends a NumericParseWarning and reads as zero; empty cells read as
// zero silently.
func (e *Engine) readAmount(grid *workbook.Grid, tpl *domain.MappingTemplate, row, col int, res *Result) (decimal.Decimal, bool) {
	raw := grid.Cell(row, col)
	if raw == "" {
		return decimal.Zero, true
	}
	v, ok := workbook.ParseNumber(raw, tpl.Locale)
	if !ok {
		res.Warnings = append(res.Warnings, domain.NumericParseWarning{Row: row, Col: col, Raw: raw})
		return decimal.Zero, false
	}
	return v.Mul(unitsFactor(tpl.Units)), true
}

func unitsFactor(u domain.Units) decimal.Decimal {
	switch u {
	case domain.UnitsThousands:
		return decimal.NewFromInt(1000)
	case domain.UnitsMillions:
		return decimal.NewFromInt(1000000)
	default:
		return decimal.NewFromInt(1)
	}
}

func (e *Engine) buildStatement(grid *workbook.Grid, tpl *domain.MappingTemplate, periods []period) domain.FinancialStatement {
	first := periods[0].date
	last := periods[len(periods)-1].date
	periodEnd := last.AddDate(0, 1, -1) // last day of the final month

	id := deterministicID("statement",
		tpl.CompanyID.String(), string(tpl.StatementType),
		first.Format("2006-01"), last.Format("2006-01"), grid.Sheet)

	return domain.FinancialStatement{
		ID:            id,
		CompanyID:     tpl.CompanyID,
		TemplateID:    tpl.ID,
		StatementType: tpl.StatementType,
		PeriodStart:   first,
		PeriodEnd:     periodEnd,
		Currency:      tpl.Currency,
		SourceFile:    grid.Sheet,
	}
}

// deterministicID derives a stable UUID from its parts. Extraction must be
// idempotent: the same workbook under the same template yields identical
// IDs on every run.
func deterministicID(parts ...string) uuid.UUID {
	key := ""
	for _, p := range parts {
		key += p + "\x00"
	}
	return uuid.NewSHA1(idNamespace, []byte(key))
}

// withinEpsilon reports whether two amounts agree within Epsilon.
func withinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
