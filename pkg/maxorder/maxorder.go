// Package maxorder models the maximum correctness count among t independent
// classifiers that guess uniformly at random on a fixed evaluation set.
//
// Per-classifier correctness is a Poisson binomial random variable; this
// package derives the distribution of the maximum of t draws from it. The
// headline quantity is Baseline: the expected accuracy of the best of t
// random classifiers, the floor a real classifier should be compared against
// when the same evaluation set has been reused t times.
package maxorder

import (
	"fmt"
	"math"

	"github.com/maxrand/go/pkg/poibin"
	"github.com/maxrand/go/pkg/probspec"
)

// Dist is the max-order-statistic distribution for a fixed evaluation set.
// Construction builds the underlying Poisson binomial model, which is the
// expensive step; the classifier count t is a cheap per-query parameter, so
// one Dist serves any number of t values. All methods are pure reads and
// safe for concurrent use. Methods taking t require t >= 1.
type Dist struct {
	n  int
	pb *poibin.Dist
}

// New builds the distribution for n examples and the given probability
// specification. The specification is validated before the model is built.
func New(n int, spec probspec.Spec) (*Dist, error) {
	ps, err := spec.Probabilities(n)
	if err != nil {
		return nil, err
	}
	return &Dist{n: n, pb: poibin.New(ps)}, nil
}

// N is the number of examples in the evaluation set.
func (d *Dist) N() int { return d.n }

// PMF is the probability that the best of t classifiers gets exactly int(k)
// examples correct. The max of t draws is <= k with probability F_k^t and
// <= k-1 with probability (F_k - f_k)^t; the difference is the mass at k.
func (d *Dist) PMF(k float64, t int) float64 {
	k = math.Floor(k)
	Fk := d.pb.CDF(k)
	fk := d.pb.PMF(k)
	return math.Pow(Fk, float64(t)) - math.Pow(Fk-fk, float64(t))
}

// F is the distribution function of the maximum: the probability that the
// best of t classifiers scores int(k) or fewer correct.
func (d *Dist) F(k float64, t int) float64 {
	k = math.Floor(k)
	if k < 0 {
		return 0
	}
	return math.Pow(d.pb.CDF(k), float64(t))
}

// Expectation is the expected number of correct guesses by the best of t
// classifiers, as a direct sum over the support {0, ..., n}.
func (d *Dist) Expectation(t int) float64 {
	total := 0.0
	for k := 0; k <= d.n; k++ {
		total += float64(k) * d.PMF(float64(k), t)
	}
	// absorb floating-point drift from the summation
	return math.Max(math.Min(total, float64(d.n)), 0)
}

// Baseline is Expectation(t) / n: the expected accuracy of the best of t
// random classifiers.
func (d *Dist) Baseline(t int) float64 {
	return d.Expectation(t) / float64(d.n)
}

// PValue is the one-sided probability that the maximum of t random
// classifiers reaches an accuracy of acc or higher. A tie with the observed
// score counts toward the p-value.
func (d *Dist) PValue(acc float64, t int) float64 {
	return 1 - d.F(float64(d.n)*acc-1, t)
}

// Baseline is the one-shot form of Dist.Baseline for callers that do not
// reuse the distribution across t values.
func Baseline(n int, spec probspec.Spec, t int) (float64, error) {
	d, err := newChecked(n, spec, t)
	if err != nil {
		return 0, err
	}
	return d.Baseline(t), nil
}

// PValue is the one-shot form of Dist.PValue.
func PValue(acc float64, n int, spec probspec.Spec, t int) (float64, error) {
	d, err := newChecked(n, spec, t)
	if err != nil {
		return 0, err
	}
	return d.PValue(acc, t), nil
}

// F is the one-shot form of Dist.F.
func F(numCorrect float64, n int, spec probspec.Spec, t int) (float64, error) {
	d, err := newChecked(n, spec, t)
	if err != nil {
		return 0, err
	}
	return d.F(numCorrect, t), nil
}

// PMF is the one-shot form of Dist.PMF.
func PMF(numCorrect float64, n int, spec probspec.Spec, t int) (float64, error) {
	d, err := newChecked(n, spec, t)
	if err != nil {
		return 0, err
	}
	return d.PMF(numCorrect, t), nil
}

func newChecked(n int, spec probspec.Spec, t int) (*Dist, error) {
	if err := CheckT(t); err != nil {
		return nil, err
	}
	return New(n, spec)
}

// CheckT validates a classifier count before any expensive work.
func CheckT(t int) error {
	if t <= 0 {
		return fmt.Errorf("classifier count must be positive, got %d", t)
	}
	return nil
}
