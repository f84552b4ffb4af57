package extract

import "math"

const (
	// columnGap is the horizontal gap, in font sizes, that separates two
	// cells on the same line.
	columnGap = 1.0

	// maxRowGap is the largest baseline distance, in font sizes, between
	// consecutive rows of one table.
	maxRowGap = 3.0

	minAlignedRows = 2
	minAlignedCols = 2
)

// detectAligned finds tables laid out with whitespace instead of rules.
// Consecutive lines that each split into two or more segments form a
// candidate block; the segments' horizontal extents are merged into column
// bands and the block is kept when its confidence reaches minConfidence.
func detectAligned(lines []textLine, rulings []ruling, minConfidence, tolerance float64) []detectedTable {
	var tables []detectedTable
	var block []textLine
	var blockSegs [][]segment

	flush := func() {
		if t, ok := buildAligned(block, blockSegs, rulings, minConfidence, tolerance); ok {
			tables = append(tables, t)
		}
		block, blockSegs = nil, nil
	}

	for _, l := range lines {
		segs := l.segments(l.size * columnGap)
		if len(segs) < minAlignedCols {
			flush()
			continue
		}
		if n := len(block); n > 0 && block[n-1].y-l.y > maxRowGap*math.Max(block[n-1].size, l.size) {
			flush()
		}
		block = append(block, l)
		blockSegs = append(blockSegs, segs)
	}
	flush()
	return tables
}

// buildAligned turns a candidate block into a table. The confidence score
// weighs cell occupancy (0.4), edge alignment of segments to their column
// band (0.4) and the presence of horizontal rules across the block (0.2).
func buildAligned(block []textLine, blockSegs [][]segment, rulings []ruling, minConfidence, tolerance float64) (detectedTable, bool) {
	if len(block) < minAlignedRows {
		return detectedTable{}, false
	}

	var spans []interval
	for _, segs := range blockSegs {
		for _, s := range segs {
			spans = append(spans, interval{lo: s.left, hi: s.right})
		}
	}
	bands := mergeIntervals(spans, tolerance)
	if len(bands) < minAlignedCols {
		return detectedTable{}, false
	}

	cells := make([][][]glyph, len(block))
	for i := range cells {
		cells[i] = make([][]glyph, len(bands))
	}

	aligned, total := 0, 0
	for i, segs := range blockSegs {
		for _, s := range segs {
			b := bandOf(s, bands)
			cells[i][b] = append(cells[i][b], s.glyphs...)
			total++
			if math.Abs(s.left-bands[b].lo) <= tolerance || math.Abs(s.right-bands[b].hi) <= tolerance {
				aligned++
			}
		}
	}

	occupied := 0
	for _, row := range cells {
		for _, c := range row {
			if len(c) > 0 {
				occupied++
			}
		}
	}

	occupancy := float64(occupied) / float64(len(block)*len(bands))
	alignment := float64(aligned) / float64(total)
	confidence := 0.4*occupancy + 0.4*alignment + 0.2*ruledScore(block, bands, rulings)
	if confidence < minConfidence {
		return detectedTable{}, false
	}

	return detectedTable{
		top:  block[0].y + block[0].size,
		left: bands[0].lo,
		rows: cellText(cells),
	}, true
}

// bandOf returns the index of the band that contains the segment.
func bandOf(s segment, bands []interval) int {
	for i, b := range bands {
		if s.left >= b.lo && s.left <= b.hi {
			return i
		}
	}
	return len(bands) - 1
}

// ruledScore is 1 when a horizontal rule crosses the block's column span
// within its vertical extent, 0 otherwise.
func ruledScore(block []textLine, bands []interval, rulings []ruling) float64 {
	first, last := block[0], block[len(block)-1]
	top := first.y + first.size
	bottom := last.y - last.size
	left, right := bands[0].lo, bands[len(bands)-1].hi

	for _, r := range rulings {
		if r.horizontal && r.pos <= top && r.pos >= bottom && r.from <= right && r.to >= left {
			return 1
		}
	}
	return 0
}
