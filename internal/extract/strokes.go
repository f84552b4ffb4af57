package extract

import (
	"math"

	"github.com/ledongthuc/pdf"
)

// affine is a PDF transformation matrix [a b c d e f].
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

// then returns the transform that applies m first and n second.
func (m affine) then(n affine) affine {
	return affine{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m affine) apply(x, y float64) point {
	return point{x: m[0]*x + m[2]*y + m[4], y: m[1]*x + m[3]*y + m[5]}
}

type point struct{ x, y float64 }

type stroke struct{ a, b point }

// strokedRulings collects the horizontal and vertical line segments that
// the page strokes with moveto/lineto paths. Page.Content only reports
// rectangles, and most table borders are drawn as individual lines.
func strokedRulings(p pdf.Page) []ruling {
	var (
		ctm        = identity
		saved      []affine
		path       []stroke
		cur, start point
		open       bool
		out        []ruling
	)

	pdf.Interpret(p.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "q":
			saved = append(saved, ctm)
		case "Q":
			if len(saved) > 0 {
				ctm = saved[len(saved)-1]
				saved = saved[:len(saved)-1]
			}
		case "cm":
			if len(args) == 6 {
				var m affine
				for i := range m {
					m[i] = args[i].Float64()
				}
				ctm = m.then(ctm)
			}
		case "m":
			if len(args) == 2 {
				cur = ctm.apply(args[0].Float64(), args[1].Float64())
				start, open = cur, true
			}
		case "l":
			if len(args) == 2 && open {
				next := ctm.apply(args[0].Float64(), args[1].Float64())
				path = append(path, stroke{cur, next})
				cur = next
			}
		case "c", "v", "y":
			// Curves never form rulings; only the current point moves.
			if len(args) >= 2 && open {
				cur = ctm.apply(args[len(args)-2].Float64(), args[len(args)-1].Float64())
			}
		case "h":
			if open {
				path = append(path, stroke{cur, start})
				cur = start
			}
		case "re":
			// Rectangles come from Page.Content.
			open = false
		case "s", "b", "b*":
			if open {
				path = append(path, stroke{cur, start})
			}
			out = appendStrokes(out, path)
			path, open = nil, false
		case "S", "B", "B*":
			out = appendStrokes(out, path)
			path, open = nil, false
		case "f", "F", "f*", "n":
			path, open = nil, false
		}
	})
	return out
}

// appendStrokes keeps the axis-aligned segments of path that are longer
// than a rule is thick.
func appendStrokes(out []ruling, path []stroke) []ruling {
	for _, s := range path {
		dx, dy := math.Abs(s.b.x-s.a.x), math.Abs(s.b.y-s.a.y)
		switch {
		case dy <= ruleThickness/2 && dx > ruleThickness:
			out = append(out, ruling{
				horizontal: true,
				pos:        (s.a.y + s.b.y) / 2,
				from:       math.Min(s.a.x, s.b.x),
				to:         math.Max(s.a.x, s.b.x),
			})
		case dx <= ruleThickness/2 && dy > ruleThickness:
			out = append(out, ruling{
				pos:  (s.a.x + s.b.x) / 2,
				from: math.Min(s.a.y, s.b.y),
				to:   math.Max(s.a.y, s.b.y),
			})
		}
	}
	return out
}
