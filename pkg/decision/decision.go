// Package decision turns an observed classifier accuracy into a verdict
// against the max-random baseline.
package decision

import (
	"math"

	"github.com/maxrand/go/pkg/maxorder"
	"github.com/maxrand/go/pkg/stats"
)

type Input struct {
	Name     string  // label for the evaluated classifier, reporting only
	Accuracy float64 // observed accuracy on the evaluation set
	T        int     // number of random attempts the set has absorbed
	Alpha    float64 // significance level for the p-value test
	WilsonZ  float64 // critical value for the observed-accuracy interval
}

type Verdict string

const (
	VerdictAboveChance  Verdict = "above_chance"
	VerdictWithinChance Verdict = "within_chance"
)

type Result struct {
	Verdict    Verdict
	PValue     float64
	Baseline   float64
	AccuracyLB float64 // Wilson lower bound of the observed accuracy
	Reason     string
}

// Evaluate tests whether the observed accuracy is distinguishable from the
// best of in.T random classifiers on the same evaluation set.
func Evaluate(d *maxorder.Dist, in Input) Result {
	pv := d.PValue(in.Accuracy, in.T)
	base := d.Baseline(in.T)
	correct := int(math.Round(in.Accuracy * float64(d.N())))
	lb := stats.WilsonLowerBound(correct, d.N(), in.WilsonZ)

	out := Result{PValue: pv, Baseline: base, AccuracyLB: lb}
	switch {
	case pv <= in.Alpha:
		out.Verdict = VerdictAboveChance
		out.Reason = "p_below_alpha"
	case in.Accuracy <= base:
		out.Verdict = VerdictWithinChance
		out.Reason = "at_or_below_expected_max"
	default:
		out.Verdict = VerdictWithinChance
		out.Reason = "insufficient_evidence"
	}
	return out
}
