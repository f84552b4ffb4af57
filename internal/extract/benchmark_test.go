package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-pdf/fpdf"
)

// ============================================================================
// Extraction Benchmarks
// ============================================================================

// benchTable is a 20x5 grid, roughly one dense invoice page.
func benchTable() [][]string {
	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = make([]string, 5)
		for j := range rows[i] {
			rows[i][j] = fmt.Sprintf("r%dc%d", i, j)
		}
	}
	return rows
}

func BenchmarkExtract_RuledPage(b *testing.B) {
	doc := buildPDF(b, ruledTable(benchTable()))
	e := New(DefaultOptions())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Extract(ctx, doc); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExtract_TenPages measures per-page overhead on a multi-page document.
func BenchmarkExtract_TenPages(b *testing.B) {
	pages := make([]func(*fpdf.Fpdf), 10)
	for i := range pages {
		pages[i] = ruledTable(benchTable())
	}
	doc := buildPDF(b, pages...)
	e := New(DefaultOptions())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Extract(ctx, doc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtract_AutoText(b *testing.B) {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d of plain prose", i)
	}
	doc := buildPDF(b, textLines(lines...))
	opts := DefaultOptions()
	opts.Strategy = StrategyAuto
	e := New(opts)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Extract(ctx, doc); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Geometry Benchmarks
// ============================================================================

func BenchmarkClusterValues(b *testing.B) {
	values := make([]float64, 500)
	for i := range values {
		values[i] = float64(i%50)*12 + float64(i%3)*0.4
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clusterValues(values, 3)
	}
}

func BenchmarkCleanText(b *testing.B) {
	s := "  \uff26\uff41\uff43\uff54\uff55\uff52\uff41  N\u00b0  123\u200b \t total  "
	for i := 0; i < b.N; i++ {
		cleanText(s)
	}
}
