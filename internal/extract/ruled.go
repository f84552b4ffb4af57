package extract

import (
	"math"
	"sort"

	"github.com/ledongthuc/pdf"
)

// ruleThickness is the largest extent, in points, of a rectangle that is
// treated as a drawn line rather than a box.
const ruleThickness = 2.0

// ruling is a horizontal or vertical line segment drawn on the page. pos is
// the y of a horizontal ruling or the x of a vertical one; from and to span
// the other axis.
type ruling struct {
	horizontal bool
	pos        float64
	from, to   float64
}

// detectedTable is a table found on a page, positioned by its top-left
// corner for ordering.
type detectedTable struct {
	top, left float64
	rows      [][]string
}

// rulingsFromRects turns drawn rectangles into rulings. Thin rectangles are
// single lines; anything larger contributes its four sides.
func rulingsFromRects(rects []pdf.Rect) []ruling {
	var out []ruling
	for _, r := range rects {
		x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
		w, h := x1-x0, y1-y0

		switch {
		case w <= ruleThickness && h <= ruleThickness:
			continue
		case h <= ruleThickness:
			out = append(out, ruling{horizontal: true, pos: (y0 + y1) / 2, from: x0, to: x1})
		case w <= ruleThickness:
			out = append(out, ruling{pos: (x0 + x1) / 2, from: y0, to: y1})
		default:
			out = append(out,
				ruling{horizontal: true, pos: y0, from: x0, to: x1},
				ruling{horizontal: true, pos: y1, from: x0, to: x1},
				ruling{pos: x0, from: y0, to: y1},
				ruling{pos: x1, from: y0, to: y1},
			)
		}
	}
	return out
}

// mergeRulings snaps rulings of the same orientation onto shared
// coordinates and joins collinear pieces that overlap or nearly touch.
func mergeRulings(rs []ruling, tolerance float64) []ruling {
	var out []ruling
	for _, horizontal := range []bool{true, false} {
		var positions []float64
		for _, r := range rs {
			if r.horizontal == horizontal {
				positions = append(positions, r.pos)
			}
		}
		centres := clusterValues(positions, tolerance)

		spans := make(map[float64][]interval, len(centres))
		for _, r := range rs {
			if r.horizontal == horizontal {
				c := snap(r.pos, centres)
				spans[c] = append(spans[c], interval{lo: r.from, hi: r.to})
			}
		}
		for _, c := range centres {
			for _, iv := range mergeIntervals(spans[c], tolerance) {
				out = append(out, ruling{horizontal: horizontal, pos: c, from: iv.lo, to: iv.hi})
			}
		}
	}
	return out
}

// touches reports whether a horizontal and a vertical ruling cross or meet.
func touches(h, v ruling, tolerance float64) bool {
	return v.pos >= h.from-tolerance && v.pos <= h.to+tolerance &&
		h.pos >= v.from-tolerance && h.pos <= v.to+tolerance
}

// connectedGrids groups rulings into sets connected through intersections.
// Groups are returned in order of their first ruling.
func connectedGrids(rs []ruling, tolerance float64) [][]ruling {
	parent := make([]int, len(rs))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range rs {
		for j := i + 1; j < len(rs); j++ {
			if rs[i].horizontal == rs[j].horizontal {
				continue
			}
			h, v := rs[i], rs[j]
			if !h.horizontal {
				h, v = v, h
			}
			if touches(h, v, tolerance) {
				if a, b := find(i), find(j); a != b {
					if a < b {
						parent[b] = a
					} else {
						parent[a] = b
					}
				}
			}
		}
	}

	index := make(map[int]int)
	var groups [][]ruling
	for i, r := range rs {
		root := find(i)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], r)
	}
	return groups
}

// detectRuled finds tables outlined by drawn rectangles or stroked lines. Each connected set
// of rulings with at least two distinct rows and columns of boundaries, and
// at least two cells, becomes a table. Glyphs are placed by their centre;
// a glyph is claimed by the first table that contains it.
func detectRuled(glyphs []glyph, rulings []ruling, tolerance float64) []detectedTable {
	var tables []detectedTable
	claimed := make([]bool, len(glyphs))

	for _, grid := range connectedGrids(rulings, tolerance) {
		var hs, vs []float64
		for _, r := range grid {
			if r.horizontal {
				hs = append(hs, r.pos)
			} else {
				vs = append(vs, r.pos)
			}
		}
		ys := clusterValues(hs, tolerance)
		xs := clusterValues(vs, tolerance)
		if len(ys) < 2 || len(xs) < 2 || (len(ys)-1)*(len(xs)-1) < 2 {
			continue
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

		nRows, nCols := len(ys)-1, len(xs)-1
		cells := make([][][]glyph, nRows)
		for i := range cells {
			cells[i] = make([][]glyph, nCols)
		}
		for i, g := range glyphs {
			if claimed[i] {
				continue
			}
			cx, cy := g.center()
			row, col := findCell(cx, cy, ys, xs)
			if row < 0 || col < 0 {
				continue
			}
			claimed[i] = true
			cells[row][col] = append(cells[row][col], g)
		}

		tables = append(tables, detectedTable{
			top:  ys[0],
			left: xs[0],
			rows: cellText(cells),
		})
	}
	return tables
}

// findCell returns the row and column of the grid cell containing (x, y),
// or -1 for either when the point falls outside. ys runs top to bottom,
// xs left to right.
func findCell(x, y float64, ys, xs []float64) (row, col int) {
	row, col = -1, -1
	for i := 0; i+1 < len(ys); i++ {
		if y <= ys[i] && y >= ys[i+1] {
			row = i
			break
		}
	}
	for j := 0; j+1 < len(xs); j++ {
		if x >= xs[j] && x <= xs[j+1] {
			col = j
			break
		}
	}
	return row, col
}

// cellText assembles and cleans the glyphs of every cell. Empty cells
// become "" so each row keeps the table's column count.
func cellText(cells [][][]glyph) [][]string {
	rows := make([][]string, len(cells))
	for r := range cells {
		rows[r] = make([]string, len(cells[r]))
		for c, gs := range cells[r] {
			rows[r][c] = cleanText(assemble(gs))
		}
	}
	return rows
}

// orderTables sorts tables top to bottom, then left to right.
func orderTables(tables []detectedTable, tolerance float64) {
	sort.SliceStable(tables, func(i, j int) bool {
		if math.Abs(tables[i].top-tables[j].top) > tolerance {
			return tables[i].top > tables[j].top
		}
		return tables[i].left < tables[j].left
	})
}
