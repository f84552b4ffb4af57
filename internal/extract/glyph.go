package extract

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// defaultFontSize is used when a text run reports no usable size.
	defaultFontSize = 10.0

	// estimatedAdvance is the per-rune width, as a fraction of the font
	// size, assumed for fonts that do not declare glyph widths.
	estimatedAdvance = 0.5

	// wordGap is the horizontal gap, as a fraction of the font size, above
	// which two glyphs on a line are separated by a space.
	wordGap = 0.15

	// lineTolerance is the baseline distance, as a fraction of the font
	// size, within which glyphs belong to the same line.
	lineTolerance = 0.5
)

// glyph is one positioned piece of text from a page's content stream.
// x and y locate the baseline origin in PDF user space (y grows upward).
type glyph struct {
	x, y float64
	w    float64
	size float64
	s    string
}

// center returns the point used to place the glyph into a table cell:
// horizontally mid-advance, vertically a third of the way up the em box.
func (g glyph) center() (float64, float64) {
	return g.x + g.w/2, g.y + g.size*0.3
}

// textLine is a run of glyphs sharing a baseline, ordered left to right.
type textLine struct {
	y      float64
	size   float64
	glyphs []glyph
}

// segment is a horizontally contiguous part of a line.
type segment struct {
	left, right float64
	glyphs      []glyph
}

// glyphsFrom converts positioned text from a page's content. Widths the
// font dictionary does not declare are estimated from the font size.
func glyphsFrom(texts []pdf.Text) []glyph {
	out := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		size := math.Abs(t.FontSize)
		if size == 0 {
			size = defaultFontSize
		}
		w := t.W
		if w <= 0 {
			w = size * estimatedAdvance * float64(utf8.RuneCountInString(t.S))
		}
		out = append(out, glyph{x: t.X, y: t.Y, w: w, size: size, s: t.S})
	}
	return out
}

// groupLines clusters glyphs into lines by baseline, top of page first.
// Glyphs with identical coordinates keep their content-stream order.
func groupLines(glyphs []glyph) []textLine {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var lines []textLine
	for _, g := range sorted {
		if n := len(lines); n > 0 {
			cur := &lines[n-1]
			if math.Abs(cur.y-g.y) <= math.Max(cur.size, g.size)*lineTolerance {
				cur.glyphs = append(cur.glyphs, g)
				cur.size = math.Max(cur.size, g.size)
				continue
			}
		}
		lines = append(lines, textLine{y: g.y, size: g.size, glyphs: []glyph{g}})
	}

	for i := range lines {
		gs := lines[i].glyphs
		sort.SliceStable(gs, func(a, b int) bool { return gs[a].x < gs[b].x })
	}
	return lines
}

// text joins the glyphs of a line, inserting a space wherever the pen
// jumps forward by more than a word gap.
func (l textLine) text() string {
	return joinGlyphs(l.glyphs)
}

func joinGlyphs(glyphs []glyph) string {
	var b strings.Builder
	cursor := math.Inf(-1)
	for _, g := range glyphs {
		if b.Len() > 0 && g.x-cursor > g.size*wordGap && !endsWithSpace(b.String()) && !startsWithSpace(g.s) {
			b.WriteByte(' ')
		}
		b.WriteString(g.s)
		cursor = math.Max(cursor, g.x) + g.w
	}
	return b.String()
}

// segments splits the line wherever the horizontal gap between consecutive
// glyphs exceeds gap points. Whitespace-only segments are discarded.
func (l textLine) segments(gap float64) []segment {
	var out []segment
	cur := -1
	cursor := math.Inf(-1)
	for _, g := range l.glyphs {
		blank := strings.TrimSpace(g.s) == ""
		if cur < 0 || g.x-cursor > gap {
			if blank {
				continue
			}
			out = append(out, segment{left: g.x})
			cur = len(out) - 1
		}
		cursor = math.Max(cursor, g.x) + g.w
		out[cur].glyphs = append(out[cur].glyphs, g)
		if !blank {
			out[cur].right = cursor
		}
	}
	return out
}

// assemble renders a set of glyphs as text: lines top to bottom joined by
// newlines, each line left to right.
func assemble(glyphs []glyph) string {
	lines := groupLines(glyphs)
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l.text()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
