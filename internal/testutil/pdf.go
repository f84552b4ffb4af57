// Package testutil builds PDF fixtures for tests outside the extract
// package.
package testutil

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Page draws the content of one page.
type Page func(doc *fpdf.Fpdf)

// PDF renders a document with one page per draw func.
func PDF(t testing.TB, pages ...Page) []byte {
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

// RuledTable draws rows as a grid of bordered cells.
func RuledTable(rows [][]string) Page {
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

// TextLines writes each line at the left margin, 10mm apart.
func TextLines(lines ...string) Page {
	return func(doc *fpdf.Fpdf) {
		for i, l := range lines {
			doc.Text(20, float64(30+10*i), l)
		}
	}
}

// BlankPage draws nothing.
func BlankPage(*fpdf.Fpdf) {}

// ThreeByThree is a small ruled table used across packages.
var ThreeByThree = [][]string{
	{"Name", "Qty", "Price"},
	{"Apple", "3", "1.50"},
	{"Pear", "10", "0.75"},
}
