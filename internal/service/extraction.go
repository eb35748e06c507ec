// Package service orchestrates the extraction pipeline: template
// resolution (explicit, stored default, or auto-detected), extraction,
// and derived insights. Persistence of statements is left to the caller;
// template bookkeeping goes through the injected store.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finstmt/internal/detect"
	apperrors "finstmt/internal/errors"
	"finstmt/internal/extract"
	"finstmt/internal/insights"
	"finstmt/internal/mapping"
	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

// ExtractionService runs the full pipeline for one workbook at a time.
// The service itself is stateless between calls; it is safe to share one
// instance across concurrent extractions.
type ExtractionService struct {
	store   mapping.Store
	engine  *extract.Engine
	automap *detect.AutoMapper
	logger  *slog.Logger
	clock   func() time.Time
}

// NewExtractionService wires the pipeline.
func NewExtractionService(store mapping.Store, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{
		store:   store,
		engine:  extract.NewEngine(logger),
		automap: detect.NewAutoMapper(logger),
		logger:  logger,
		clock:   time.Now,
	}
}

// Request identifies what to extract and under which template. Exactly
// one of TemplateID, UseDefault, or auto-detection (neither set) applies.
type Request struct {
	CompanyID     uuid.UUID
	StatementType domain.StatementType
	// TemplateID selects a stored template explicitly.
	TemplateID uuid.UUID
	// UseDefault resolves the company's default template for the
	// statement type.
	UseDefault bool
	// Locale and Currency seed auto-detected templates.
	Locale   string
	Currency string
	// SheetName selects a sheet; empty means the first non-empty one.
	SheetName string
	// MaxHeaderScanRows and MaxColumns bound the auto-detection scans.
	// Zero means the detector's defaults.
	MaxHeaderScanRows int
	MaxColumns        int
}

// Outcome is the pipeline result handed back to the caller.
type Outcome struct {
	Extraction *extract.Result
	Highlights []insights.Highlight
}

// Process resolves a template for the workbook and extracts it. When no
// template is requested, the structure detector proposes one; the caller
// decides whether to persist it after reviewing NeedsConfirmation and
// MissingRoles on the returned template.
func (s *ExtractionService) Process(ctx context.Context, wb *workbook.Workbook, req Request) (*Outcome, error) {
	grid := wb.First()
	if req.SheetName != "" {
		grid = wb.Grid(req.SheetName)
	}
	if grid == nil {
		return nil, apperrors.NewStructureDetectionError("requested sheet not found in workbook").
			WithContext("sheet", req.SheetName)
	}

	tpl, stored, err := s.resolveTemplate(ctx, grid, req)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Extract(ctx, grid, tpl)
	if err != nil {
		return nil, err
	}
	res.Statement.SourceFile = wb.SourceFile

	if stored {
		if err := s.store.Touch(ctx, tpl.ID, s.clock().UTC()); err != nil {
			// Bookkeeping failure must not void a completed extraction.
			s.logger.WarnContext(ctx, "failed to record template usage",
				slog.String("template_id", tpl.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return &Outcome{
		Extraction: res,
		Highlights: insights.Highlights(res.Monthly, s.clock().UTC()),
	}, nil
}

func (s *ExtractionService) resolveTemplate(ctx context.Context, grid *workbook.Grid, req Request) (*domain.MappingTemplate, bool, error) {
	switch {
	case req.TemplateID != uuid.Nil:
		tpl, err := s.store.Get(ctx, req.TemplateID)
		if err != nil {
			return nil, false, err
		}
		return tpl, true, nil

	case req.UseDefault:
		tpl, err := s.store.Default(ctx, req.CompanyID, req.StatementType)
		if err != nil {
			return nil, false, err
		}
		return tpl, true, nil

	default:
		tpl, err := s.automap.AutoMap(grid, detect.AutoMapOptions{
			CompanyID:         req.CompanyID,
			StatementType:     req.StatementType,
			Locale:            req.Locale,
			Currency:          req.Currency,
			MaxHeaderScanRows: req.MaxHeaderScanRows,
			MaxColumns:        req.MaxColumns,
		})
		if err != nil {
			return nil, false, err
		}
		// A sheet carrying its own subtotal rows is extracted in
		// fixed-row mode, which trusts the source's computed totals.
		if col, ok := tpl.ConceptColumn(domain.RoleAccountName); ok {
			if fixed := detect.SuggestFixedRows(grid, col.ColumnIndex); fixed != nil {
				tpl.FixedRowMap = fixed
			}
		}
		return tpl, false, nil
	}
}
