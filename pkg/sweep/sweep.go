// Package sweep reports the max-random baseline across a range of reuse
// counts, amortizing one distribution build over every t queried.
package sweep

import "github.com/maxrand/go/pkg/maxorder"

type Point struct {
	T        int     `json:"t"`
	Baseline float64 `json:"baseline"`
}

// TGrid builds a 1-2-5 ladder of classifier counts up to and including maxT.
func TGrid(maxT int) []int {
	if maxT < 1 {
		return nil
	}
	out := []int{}
	steps := []int{1, 2, 5}
	for decade := 1; ; decade *= 10 {
		for _, s := range steps {
			t := s * decade
			if t > maxT {
				if last := len(out) - 1; last < 0 || out[last] != maxT {
					out = append(out, maxT)
				}
				return out
			}
			out = append(out, t)
		}
	}
}

// Run evaluates the baseline at each t on an already constructed
// distribution.
func Run(d *maxorder.Dist, ts []int) []Point {
	out := make([]Point, 0, len(ts))
	for _, t := range ts {
		out = append(out, Point{T: t, Baseline: d.Baseline(t)})
	}
	return out
}
