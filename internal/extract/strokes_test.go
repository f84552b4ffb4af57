package extract

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
)

const ptPerMM = 72 / 25.4

func firstPage(t *testing.T, data []byte) pdf.Page {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	return r.Page(1)
}

func TestStrokedRulings(t *testing.T) {
	data := buildPDF(t, func(doc *fpdf.Fpdf) {
		// Translated horizontal line: the transform must be applied.
		doc.TransformBegin()
		doc.TransformTranslate(10, 0)
		doc.Line(20, 30, 100, 30)
		doc.TransformEnd()

		doc.Line(20, 50, 20, 80)
		// Diagonals are not rulings.
		doc.Line(120, 100, 160, 140)
	})

	got := strokedRulings(firstPage(t, data))
	if len(got) != 2 {
		t.Fatalf("strokedRulings() = %+v, want 2 rulings", got)
	}

	const pageH = 297.0 // A4, in mm
	tests := []struct {
		name string
		got  ruling
		want ruling
	}{
		{"horizontal", got[0], ruling{horizontal: true, pos: (pageH - 30) * ptPerMM, from: 30 * ptPerMM, to: 110 * ptPerMM}},
		{"vertical", got[1], ruling{pos: 20 * ptPerMM, from: (pageH - 80) * ptPerMM, to: (pageH - 50) * ptPerMM}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.horizontal != tt.want.horizontal {
				t.Fatalf("horizontal = %v, want %v", tt.got.horizontal, tt.want.horizontal)
			}
			for _, pair := range [][2]float64{{tt.got.pos, tt.want.pos}, {tt.got.from, tt.want.from}, {tt.got.to, tt.want.to}} {
				if math.Abs(pair[0]-pair[1]) > 0.05 {
					t.Errorf("ruling = %+v, want %+v", tt.got, tt.want)
					break
				}
			}
		})
	}
}

func TestStrokedRulings_IgnoresFilledPaths(t *testing.T) {
	data := buildPDF(t, func(doc *fpdf.Fpdf) {
		doc.Polygon([]fpdf.PointType{{X: 20, Y: 20}, {X: 80, Y: 20}, {X: 80, Y: 60}}, "F")
	})

	if got := strokedRulings(firstPage(t, data)); len(got) != 0 {
		t.Errorf("strokedRulings() = %+v, want none", got)
	}
}

func TestAffineThen(t *testing.T) {
	scale := affine{2, 0, 0, 2, 0, 0}
	shift := affine{1, 0, 0, 1, 5, 7}

	p := scale.then(shift).apply(1, 1)
	if p != (point{x: 7, y: 9}) {
		t.Errorf("scale then shift = %+v, want {7 9}", p)
	}
	p = shift.then(scale).apply(1, 1)
	if p != (point{x: 12, y: 16}) {
		t.Errorf("shift then scale = %+v, want {12 16}", p)
	}
	if identity.then(shift) != shift {
		t.Errorf("identity.then(shift) = %v", identity.then(shift))
	}
}
