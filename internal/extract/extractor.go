package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Strategy selects how tables are recognised on a page.
type Strategy string

const (
	// StrategyLines finds tables outlined by drawn rectangles.
	StrategyLines Strategy = "lines"
	// StrategyText finds tables from whitespace-aligned columns of text.
	StrategyText Strategy = "text"
	// StrategyAuto tries lines first and falls back to text per page.
	StrategyAuto Strategy = "auto"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyLines, StrategyText, StrategyAuto:
		return st, nil
	case "":
		return StrategyLines, nil
	default:
		return "", fmt.Errorf("unknown table strategy %q", s)
	}
}

// Options tunes table detection.
type Options struct {
	Strategy Strategy

	// SnapTolerance is the distance in points within which rulings,
	// column edges and table tops are considered equal.
	SnapTolerance float64

	// MinConfidence is the score a whitespace-aligned table needs.
	MinConfidence float64
}

// DefaultOptions returns ruled-table detection with a 3pt tolerance.
func DefaultOptions() Options {
	return Options{
		Strategy:      StrategyLines,
		SnapTolerance: 3,
		MinConfidence: 0.5,
	}
}

// Result is the row model of one document.
type Result struct {
	Rows       [][]string
	TotalRows  int
	TotalPages int
}

// Extractor converts PDF documents to rows. It holds no per-document state
// and is safe for concurrent use.
type Extractor struct {
	opts Options
}

var disableConfigDir sync.Once

// New creates an Extractor. Zero-valued options fall back to defaults.
func New(opts Options) *Extractor {
	// pdfcpu would otherwise create a configuration directory under the
	// user's home on first use.
	disableConfigDir.Do(api.DisableConfigDir)

	def := DefaultOptions()
	if opts.Strategy == "" {
		opts.Strategy = def.Strategy
	}
	if opts.SnapTolerance <= 0 {
		opts.SnapTolerance = def.SnapTolerance
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = def.MinConfidence
	}
	return &Extractor{opts: opts}
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract reads every page of data and returns its rows. A document with
// no pages, or with only blank pages, yields an empty result rather than
// an error. Any read failure yields an *ExtractionError and no result.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{Err: errors.New("empty document")}
	}

	pages, err := pageCount(data)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	rows := make([][]string, 0)
	if pages > 0 {
		if rows, err = e.readPages(ctx, data); err != nil {
			return nil, err
		}
	}

	return &Result{
		Rows:       rows,
		TotalRows:  len(rows),
		TotalPages: pages,
	}, nil
}

// pageCount validates the document structure and returns its page count.
func pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return 0, fmt.Errorf("validate pdf: %w", err)
	}
	return pdfCtx.PageCount, nil
}

func (e *Extractor) readPages(ctx context.Context, data []byte) (rows [][]string, err error) {
	page := 0
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = &ExtractionError{Page: page, Err: fmt.Errorf("pdf reader: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Err: fmt.Errorf("open pdf: %w", err)}
	}

	rows = make([][]string, 0)
	for page = 1; page <= reader.NumPage(); page++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ExtractionError{Page: page, Err: ctxErr}
		}

		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		pageRows, pageErr := e.extractPage(p)
		if pageErr != nil {
			return nil, &ExtractionError{Page: page, Err: pageErr}
		}
		rows = append(rows, pageRows...)
	}
	return rows, nil
}

// extractPage returns the rows of every table on the page, or one
// single-cell row per non-blank line when the page has no table.
func (e *Extractor) extractPage(p pdf.Page) ([][]string, error) {
	content := p.Content()
	glyphs := glyphsFrom(content.Text)
	lines := groupLines(glyphs)
	drawn := append(rulingsFromRects(content.Rect), strokedRulings(p)...)
	rulings := mergeRulings(drawn, e.opts.SnapTolerance)

	if tables := e.detectTables(glyphs, lines, rulings); len(tables) > 0 {
		var rows [][]string
		for _, t := range tables {
			rows = append(rows, t.rows...)
		}
		return rows, nil
	}

	if len(glyphs) == 0 {
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("plain text: %w", err)
		}
		return singleCellRows(splitLines(text)), nil
	}

	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := cleanText(l.text()); s != "" {
			texts = append(texts, s)
		}
	}
	return singleCellRows(texts), nil
}

func (e *Extractor) detectTables(glyphs []glyph, lines []textLine, rulings []ruling) []detectedTable {
	tol := e.opts.SnapTolerance

	var tables []detectedTable
	switch e.opts.Strategy {
	case StrategyText:
		tables = detectAligned(lines, rulings, e.opts.MinConfidence, tol)
	case StrategyAuto:
		tables = detectRuled(glyphs, rulings, tol)
		if len(tables) == 0 {
			tables = detectAligned(lines, rulings, e.opts.MinConfidence, tol)
		}
	default:
		tables = detectRuled(glyphs, rulings, tol)
	}

	orderTables(tables, tol)
	return tables
}

func singleCellRows(lines []string) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l})
	}
	return rows
}
