package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/go-pdf/fpdf"
)

// buildPDF renders a document with fpdf. Each draw func fills one page.
func buildPDF(t testing.TB, pages ...func(doc *fpdf.Fpdf)) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, draw := range pages {
		doc.AddPage()
		draw(doc)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("fpdf Output() error = %v", err)
	}
	return buf.Bytes()
}

// ruledTable draws rows as bordered, left-aligned cells.
func ruledTable(rows [][]string) func(doc *fpdf.Fpdf) {
	return func(doc *fpdf.Fpdf) {
		doc.SetXY(20, 30)
		for _, row := range rows {
			for _, cell := range row {
				doc.CellFormat(40, 10, cell, "1", 0, "L", false, 0, "")
			}
			doc.Ln(-1)
			doc.SetX(20)
		}
	}
}

// textLines writes each line at a fixed left margin, 10mm apart.
func textLines(lines ...string) func(doc *fpdf.Fpdf) {
	return func(doc *fpdf.Fpdf) {
		for i, l := range lines {
			doc.Text(20, float64(30+10*i), l)
		}
	}
}

func blankPage(*fpdf.Fpdf) {}

// strokedTable draws the grid with individual lines instead of cell
// borders, then writes each cell's text inside it.
func strokedTable(rows [][]string) func(doc *fpdf.Fpdf) {
	return func(doc *fpdf.Fpdf) {
		const x0, y0, w, h = 20.0, 30.0, 40.0, 10.0
		cols := len(rows[0])
		for i := 0; i <= len(rows); i++ {
			y := y0 + h*float64(i)
			doc.Line(x0, y, x0+w*float64(cols), y)
		}
		for j := 0; j <= cols; j++ {
			x := x0 + w*float64(j)
			doc.Line(x, y0, x, y0+h*float64(len(rows)))
		}
		for i, row := range rows {
			for j, cell := range row {
				doc.Text(x0+w*float64(j)+2, y0+h*float64(i)+7, cell)
			}
		}
	}
}

// zeroPagePDF is a valid document whose page tree is empty.
func zeroPagePDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtract_RuledTable(t *testing.T) {
	want := [][]string{
		{"Name", "Qty", "Price"},
		{"Apple", "3", "1.50"},
		{"Pear", "10", "0.75"},
	}
	data := buildPDF(t, ruledTable(want))

	res, err := New(DefaultOptions()).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", res.TotalPages)
	}
	if res.TotalRows != len(res.Rows) {
		t.Errorf("TotalRows = %d, len(Rows) = %d", res.TotalRows, len(res.Rows))
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("Rows = %q, want %q", res.Rows, want)
	}
}

func TestExtract_StrokedGrid(t *testing.T) {
	want := [][]string{
		{"Name", "Qty", "Price"},
		{"Apple", "3", "1.50"},
		{"Pear", "10", "0.75"},
	}
	data := buildPDF(t, strokedTable(want))

	for _, strategy := range []Strategy{StrategyLines, StrategyAuto} {
		t.Run(string(strategy), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Strategy = strategy
			res, err := New(opts).Extract(context.Background(), data)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !reflect.DeepEqual(res.Rows, want) {
				t.Errorf("Rows = %q, want %q", res.Rows, want)
			}
		})
	}
}

func TestExtract_ZeroPages(t *testing.T) {
	res, err := New(DefaultOptions()).Extract(context.Background(), zeroPagePDF())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", res.TotalPages)
	}
	if res.Rows == nil || len(res.Rows) != 0 || res.TotalRows != 0 {
		t.Errorf("Rows = %#v, TotalRows = %d, want empty", res.Rows, res.TotalRows)
	}
}

func TestExtract_RuledTableKeepsEmptyCells(t *testing.T) {
	rows := [][]string{
		{"Code", "Description", "Amount"},
		{"A1", "", "100"},
		{"B2", "Widget", ""},
	}
	data := buildPDF(t, ruledTable(rows))

	res, err := New(DefaultOptions()).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3: %q", len(res.Rows), res.Rows)
	}
	for i, row := range res.Rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells, want 3: %q", i, len(row), row)
		}
	}
	if res.Rows[1][1] != "" || res.Rows[2][2] != "" {
		t.Errorf("missing cells should be empty strings: %q", res.Rows)
	}
}

func TestExtract_TextFallback(t *testing.T) {
	data := buildPDF(t, textLines("Quarterly report", "   ", "Prepared by finance"))

	res, err := New(DefaultOptions()).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := [][]string{{"Quarterly report"}, {"Prepared by finance"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("Rows = %q, want %q", res.Rows, want)
	}
	if res.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", res.TotalRows)
	}
}

func TestExtract_BlankPage(t *testing.T) {
	data := buildPDF(t, blankPage)

	res, err := New(DefaultOptions()).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Rows) != 0 || res.TotalRows != 0 {
		t.Errorf("Rows = %q, want none", res.Rows)
	}
	if res.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", res.TotalPages)
	}
}

func TestExtract_PagesConcatenateInOrder(t *testing.T) {
	table := [][]string{{"a", "b"}, {"c", "d"}}
	data := buildPDF(t,
		ruledTable(table),
		blankPage,
		textLines("closing note"),
	)

	res, err := New(DefaultOptions()).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := [][]string{{"a", "b"}, {"c", "d"}, {"closing note"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("Rows = %q, want %q", res.Rows, want)
	}
	if res.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", res.TotalPages)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	data := buildPDF(t, ruledTable([][]string{{"x", "y"}, {"1", "2"}}), textLines("tail"))
	x := New(DefaultOptions())

	first, err := x.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	second, err := x.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("this is plainly not a PDF document")},
		{"header only", []byte("%PDF-1.4\n%%EOF\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(DefaultOptions()).Extract(context.Background(), tt.data)
			if err == nil {
				t.Fatal("Extract() expected error")
			}
			if res != nil {
				t.Errorf("Extract() returned a partial result: %+v", res)
			}
			var extErr *ExtractionError
			if !errors.As(err, &extErr) {
				t.Errorf("error %T is not an *ExtractionError", err)
			}
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	data := buildPDF(t, textLines("never read"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultOptions()).Extract(ctx, data)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"lines", StrategyLines, false},
		{"TEXT", StrategyText, false},
		{" auto ", StrategyAuto, false},
		{"", StrategyLines, false},
		{"stream", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	x := New(Options{})
	if got := x.Options(); got != DefaultOptions() {
		t.Errorf("Options() = %+v, want %+v", got, DefaultOptions())
	}
}
