// Command extractor runs the extraction pipeline over one workbook or a
// directory of workbooks and writes the results as CSV and JSON files.
//
// Template resolution per run: -template selects a stored template by ID,
// -default resolves the company's stored default, and with neither set the
// structure detector proposes a mapping from the sheet itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finstmt/internal/config"
	"finstmt/internal/exporter"
	"finstmt/internal/files"
	"finstmt/internal/mapping"
	"finstmt/internal/service"
	"finstmt/internal/workbook"
	"finstmt/pkg/contracts"
	"finstmt/pkg/contracts/domain"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file path (defaults to FINSTMT_CONFIG or finstmt.yml)")
		in          = flag.String("in", "", "input workbook file or directory (defaults to configured data dir)")
		out         = flag.String("out", "", "output directory (defaults to configured output dir)")
		companyFlag = flag.String("company", "", "company UUID the statements belong to")
		typeFlag    = flag.String("type", string(domain.StatementCashFlow), "statement type: cash_flow, profit_loss or balance_sheet")
		tplFlag     = flag.String("template", "", "mapping template UUID to extract with")
		useDefault  = flag.Bool("default", false, "use the company's default template for the statement type")
		sheet       = flag.String("sheet", "", "sheet name (defaults to the first non-empty sheet)")
		locale      = flag.String("locale", "", "locale for auto-detected templates (en or es)")
		currency    = flag.String("currency", "", "currency code for auto-detected templates")
		workers     = flag.Int("workers", 4, "number of workbooks extracted concurrently")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionInfo())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Logging)

	companyID, err := uuid.Parse(*companyFlag)
	if err != nil {
		logger.Error("invalid or missing -company UUID", slog.String("value", *companyFlag))
		os.Exit(1)
	}
	statementType, err := parseStatementType(*typeFlag)
	if err != nil {
		logger.Error("invalid -type", slog.String("value", *typeFlag))
		os.Exit(1)
	}
	var templateID uuid.UUID
	if *tplFlag != "" {
		if templateID, err = uuid.Parse(*tplFlag); err != nil {
			logger.Error("invalid -template UUID", slog.String("value", *tplFlag))
			os.Exit(1)
		}
	}

	inputPath := *in
	if inputPath == "" {
		inputPath = cfg.Paths.DataDir
	}
	outputDir := *out
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	store, err := mapping.NewFileStore(cfg.Paths.TemplatesFile, logger)
	if err != nil {
		logger.Error("failed to open template store",
			slog.String("path", cfg.Paths.TemplatesFile),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	workbooks, err := files.NewDiscovery(".").Resolve(inputPath)
	if err != nil {
		logger.Error("failed to resolve input", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(workbooks) == 0 {
		logger.Warn("no workbooks found", slog.String("input", inputPath))
		return
	}
	logger.Info("starting extraction",
		slog.Int("workbook_count", len(workbooks)),
		slog.String("statement_type", string(statementType)),
		slog.String("output_dir", outputDir))

	svc := service.NewExtractionService(store, logger)
	req := service.Request{
		CompanyID:         companyID,
		StatementType:     statementType,
		TemplateID:        templateID,
		UseDefault:        *useDefault,
		Locale:            defaultString(*locale, cfg.Defaults.Locale),
		Currency:          defaultString(*currency, cfg.Defaults.Currency),
		SheetName:         *sheet,
		MaxHeaderScanRows: cfg.Detect.MaxHeaderScanRows,
		MaxColumns:        cfg.Detect.MaxColumns,
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for _, wbInfo := range workbooks {
		wbInfo := wbInfo
		g.Go(func() error {
			return extractOne(ctx, svc, logger, wbInfo, req, outputDir)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("extraction failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("extraction complete", slog.Int("workbook_count", len(workbooks)))
}

// extractOne runs the pipeline for a single workbook and writes its output
// files under outDir/<workbook stem>/.
func extractOne(ctx context.Context, svc *service.ExtractionService, logger *slog.Logger,
	info files.WorkbookInfo, req service.Request, outDir string) error {

	wb, err := workbook.OpenFile(info.Path, logger)
	if err != nil {
		return fmt.Errorf("open %s: %w", info.Name, err)
	}

	outcome, err := svc.Process(ctx, wb, req)
	if err != nil {
		return fmt.Errorf("extract %s: %w", info.Name, err)
	}
	res := outcome.Extraction

	for _, warn := range res.Warnings {
		logger.Warn("extraction warning",
			slog.String("source", info.Name),
			slog.String("code", string(warn.Code())),
			slog.String("message", warn.Message()))
	}
	if res.Template.NeedsConfirmation {
		logger.Warn("auto-detected template needs confirmation before it is saved",
			slog.String("source", info.Name),
			slog.Any("missing_roles", res.Template.MissingRoles))
	}

	stem := strings.TrimSuffix(info.Name, filepath.Ext(info.Name))
	targetDir := filepath.Join(outDir, stem)

	csvWriter := exporter.NewCSVWriter(logger)
	if err := csvWriter.WriteMonthly(filepath.Join(targetDir, "monthly.csv"), res.Monthly); err != nil {
		return err
	}
	if err := csvWriter.WriteLineItems(filepath.Join(targetDir, "line_items.csv"), res.LineItems); err != nil {
		return err
	}
	jsonWriter := exporter.NewJSONWriter(logger)
	if err := jsonWriter.WriteStatement(filepath.Join(targetDir, "statement.json"),
		res.Statement, res.LineItems, res.Monthly, res.Warnings); err != nil {
		return err
	}

	for _, h := range outcome.Highlights {
		logger.Info("insight",
			slog.String("source", info.Name),
			slog.String("kind", string(h.Kind)),
			slog.String("caption", h.Caption),
			slog.String("amount", h.Amount.String()))
	}

	logger.Info("workbook extracted",
		slog.String("source", info.Name),
		slog.Int("line_items", len(res.LineItems)),
		slog.Int("months", len(res.Monthly)),
		slog.Int("warnings", len(res.Warnings)),
		slog.String("output_dir", targetDir))
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseStatementType(s string) (domain.StatementType, error) {
	switch domain.StatementType(strings.ToLower(s)) {
	case domain.StatementCashFlow:
		return domain.StatementCashFlow, nil
	case domain.StatementProfitLoss:
		return domain.StatementProfitLoss, nil
	case domain.StatementBalanceSheet:
		return domain.StatementBalanceSheet, nil
	default:
		return "", fmt.Errorf("unknown statement type %q", s)
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
