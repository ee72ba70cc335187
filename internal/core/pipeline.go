package core

// pipeline.go runs one generation as a linear sequence of stages:
//
//	awaiting_inputs -> sheet_loaded -> columns_normalized -> context_built ->
//	records_sorted -> placeholders_substituted -> [marker_inserted] -> done
//
// Any error stops the run and no document bytes are returned. The sheet is
// loaded before the template is decoded, so an empty sheet fails before any
// document work happens.

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/minuta/internal/logging"
	"github.com/google/uuid"
)

// Stage is a step of the generation pipeline.
type Stage string

const (
	StageAwaitingInputs          Stage = "awaiting_inputs"
	StageSheetLoaded             Stage = "sheet_loaded"
	StageColumnsNormalized       Stage = "columns_normalized"
	StageContextBuilt            Stage = "context_built"
	StageRecordsSorted           Stage = "records_sorted"
	StagePlaceholdersSubstituted Stage = "placeholders_substituted"
	StageMarkerInserted          Stage = "marker_inserted"
	StageDone                    Stage = "done"
	StageFailed                  Stage = "failed"
)

// DocxMimeType is the content type of generated documents.
const DocxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Request carries the inputs of one generation.
type Request struct {
	TemplateName string
	Template     []byte
	SheetName    string
	Sheet        []byte
	Options      Options
}

// Result is a finished generation.
type Result struct {
	ID          string
	Document    []byte
	Filename    string
	MimeType    string
	Columns     []Column
	Listing     string
	OrderColumn string
	Records     int
	Edits       []Edit
	Inserted    int
	Warnings    []string
	Stages      []Stage
	Duration    time.Duration
}

// Generate fills the template with the sheet's data.
// Failures are returned as *StageError wrapping the typed cause.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, &StageError{Stage: StageAwaitingInputs, Err: err}
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageAwaitingInputs, Err: err}
	}
	defer release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	g := &generation{
		svc:    s,
		req:    req,
		opts:   req.Options,
		result: &Result{ID: uuid.NewString(), MimeType: DocxMimeType},
		stage:  StageAwaitingInputs,
	}
	ip, _ := ClientFromContext(ctx)
	g.log = logging.WithFields(ctx,
		"generation_id", g.result.ID,
		"template", req.TemplateName,
		"sheet", req.SheetName,
		"client_ip", ip,
	)

	start := time.Now()
	if err := g.run(ctx); err != nil {
		g.log.Warn("generation failed", "stage", g.stage, "error", err)
		return nil, &StageError{Stage: g.stage, Err: err}
	}
	g.result.Duration = time.Since(start)

	g.log.Info("generation completed",
		"records", g.result.Records,
		"order_column", g.result.OrderColumn,
		"edits", len(g.result.Edits),
		"inserted", g.result.Inserted,
		"warnings", len(g.result.Warnings),
		"bytes", len(g.result.Document),
		"duration_ms", g.result.Duration.Milliseconds(),
	)
	return g.result, nil
}

// generation is the state of one run. It is never shared.
type generation struct {
	svc    *Service
	req    Request
	opts   Options
	result *Result
	stage  Stage
	log    *slog.Logger

	rows   [][]string
	set    *RecordSet
	values Context
	sorted []Record
	doc    Document
}

func (g *generation) advance(ctx context.Context, next Stage) error {
	g.stage = next
	g.result.Stages = append(g.result.Stages, next)
	g.log.Debug("stage reached", "stage", next)
	return ctx.Err()
}

func (g *generation) run(ctx context.Context) error {
	steps := []struct {
		stage Stage
		fn    func() error
	}{
		{StageSheetLoaded, g.loadSheet},
		{StageColumnsNormalized, g.normalizeColumns},
		{StageContextBuilt, g.buildContext},
		{StageRecordsSorted, g.sortRecords},
		{StagePlaceholdersSubstituted, g.substitute},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return err
		}
		if err := g.advance(ctx, step.stage); err != nil {
			return err
		}
	}

	inserted, err := g.insertMarkerBlock()
	if err != nil {
		return err
	}
	if inserted {
		if err := g.advance(ctx, StageMarkerInserted); err != nil {
			return err
		}
	}

	out, err := g.doc.Bytes()
	if err != nil {
		return err
	}
	g.result.Document = out
	g.result.Filename = outputFilename(g.req.TemplateName)
	return g.advance(ctx, StageDone)
}

func (g *generation) loadSheet() error {
	rows, err := g.svc.sheets.Decode(g.req.SheetName, g.req.Sheet)
	if err != nil {
		return asDecodeError("sheet", g.req.SheetName, err)
	}
	g.rows = rows
	return nil
}

func (g *generation) normalizeColumns() error {
	set, err := LoadRecords(g.rows, g.svc.vocab)
	if err != nil {
		return withSheetName(err, g.req.SheetName)
	}
	g.set = set
	g.rows = nil
	g.result.Columns = set.Columns()
	g.result.Listing = set.Listing()
	g.result.Records = set.Len()
	return nil
}

func (g *generation) buildContext() error {
	g.values = BuildContext(g.set.First(), g.opts.ExtraGlobals)
	return nil
}

func (g *generation) sortRecords() error {
	col, err := resolveOrderColumn(g.opts, g.set.ColumnNames(), g.svc.vocab)
	if err != nil {
		return err
	}
	if col == "" {
		g.log.Debug("no order column, keeping sheet order")
	}
	g.result.OrderColumn = col
	g.sorted = SortRecords(g.set.Records(), col)
	return nil
}

func (g *generation) substitute() error {
	doc, err := g.svc.docs.Decode(g.req.Template)
	if err != nil {
		return asDecodeError("document", g.req.TemplateName, err)
	}
	g.doc = doc

	edits := PlanSubstitutions(doc, g.values)
	ApplyEdits(edits)
	g.result.Edits = edits
	g.result.Warnings = append(g.result.Warnings, Warnings(UnresolvedPlaceholders(doc))...)
	return nil
}

// insertMarkerBlock reports false when the step is skipped.
func (g *generation) insertMarkerBlock() (bool, error) {
	if !g.opts.UseMarkerBlock {
		return false, nil
	}

	orderCol := g.result.OrderColumn
	qualifying := QualifyingRecords(g.sorted, orderCol)
	if len(qualifying) == 0 {
		g.log.Info("marker block skipped, no record has an order value", "order_column", orderCol)
		return false, nil
	}

	all := g.set.ColumnNames()
	g.result.Warnings = append(g.result.Warnings,
		Warnings(CheckColumns("marker_columns", g.opts.MarkerColumns, all, g.svc.vocab))...)

	columns := make([]string, 0, len(g.opts.MarkerColumns))
	for _, c := range g.opts.MarkerColumns {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, g.svc.vocab.Canonical(c, all))
		}
	}
	entries := BuildBlockEntries(qualifying, all, BlockOptions{
		OrderColumn:   orderCol,
		Columns:       columns,
		LabelColumns:  g.opts.LabelColumns,
		LineSeparator: g.opts.LineSeparator,
	})

	n, err := InsertMarkerBlock(g.doc, g.opts.MarkerText, entries, BlockStyle{
		SpaceAfterPt: g.opts.SpaceAfterPt,
		Scope:        ParseScope(g.opts.MarkerScope),
	})
	if err != nil {
		return false, err
	}
	g.result.Inserted = n
	return true, nil
}

// resolveOrderColumn picks the sort column. An explicit choice must exist in
// the sheet (after aliasing). A guess is only mandatory when the list block is
// requested.
func resolveOrderColumn(opts Options, columns []string, vocab *Vocabulary) (string, error) {
	if strings.TrimSpace(opts.OrderColumn) != "" {
		col := vocab.Canonical(opts.OrderColumn, columns)
		for _, c := range columns {
			if c == col {
				return col, nil
			}
		}
		return "", &NoOrderableColumnError{Column: opts.OrderColumn, Available: columns}
	}

	if col := GuessOrderColumn(columns); col != "" {
		return col, nil
	}
	if opts.UseMarkerBlock {
		return "", &NoOrderableColumnError{Available: columns}
	}
	return "", nil
}

// outputFilename derives the download name from the template name.
func outputFilename(templateName string) string {
	base := filepath.Base(templateName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "documento"
	}
	return base + "_preenchido.docx"
}

// asDecodeError wraps err as a *DecodeError unless it already is one.
func asDecodeError(source, name string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Source: source, Name: name, Err: err}
}

// withSheetName fills in the sheet name on an *EmptyInputError.
func withSheetName(err error, name string) error {
	var empty *EmptyInputError
	if errors.As(err, &empty) && empty.Sheet == "" {
		empty.Sheet = name
	}
	return err
}
