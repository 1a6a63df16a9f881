// Package stats holds the small frequentist helpers the verdict layer needs
// beyond the max-order machinery.
package stats

import "math"

// WilsonInterval returns the Wilson score interval for the proportion
// successes/n at critical value z. Used to report how tightly an observed
// accuracy is pinned down by n examples.
func WilsonInterval(successes, n int, z float64) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	p := float64(successes) / float64(n)
	nf := float64(n)
	den := 1 + z*z/nf
	center := p + z*z/(2*nf)
	rad := z * math.Sqrt((p*(1-p)+z*z/(4*nf))/nf)
	return (center - rad) / den, (center + rad) / den
}

// WilsonLowerBound is the lower edge of the Wilson score interval.
func WilsonLowerBound(successes, n int, z float64) float64 {
	lo, _ := WilsonInterval(successes, n, z)
	return lo
}
