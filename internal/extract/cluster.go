package extract

import (
	"math"
	"sort"
)

// clusterValues merges sorted values that lie within tolerance of the
// running cluster centre, returning one averaged value per cluster.
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	clustered := []float64{sorted[0]}
	counts := []int{1}
	for _, v := range sorted[1:] {
		last := len(clustered) - 1
		if v-clustered[last] > tolerance {
			clustered = append(clustered, v)
			counts = append(counts, 1)
			continue
		}
		counts[last]++
		clustered[last] += (v - clustered[last]) / float64(counts[last])
	}
	return clustered
}

// snap returns the cluster centre closest to v.
func snap(v float64, centres []float64) float64 {
	best := v
	bestDist := math.Inf(1)
	for _, c := range centres {
		if d := math.Abs(c - v); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// interval is a closed range on one axis.
type interval struct {
	lo, hi float64
}

// mergeIntervals unions overlapping ranges, treating ranges closer than
// tolerance as touching. The result is sorted by lo.
func mergeIntervals(in []interval, tolerance float64) []interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lo < sorted[j].lo })

	out := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.lo <= last.hi+tolerance {
			last.hi = math.Max(last.hi, iv.hi)
			continue
		}
		out = append(out, iv)
	}
	return out
}
