package maxorder

import (
	"math"
	"testing"

	"github.com/maxrand/go/pkg/poibin"
	"github.com/maxrand/go/pkg/probspec"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) < eps }

func mustNew(t *testing.T, n int, spec probspec.Spec) *Dist {
	t.Helper()
	d, err := New(n, spec)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFBoundaries(t *testing.T) {
	d := mustNew(t, 20, probspec.Uniform(0.3))
	for _, tc := range []int{1, 2, 10, 100} {
		if got := d.F(float64(d.N()), tc); got != 1 {
			t.Fatalf("F(n, %d) = %g, want 1", tc, got)
		}
		if got := d.F(-1, tc); got != 0 {
			t.Fatalf("F(-1, %d) = %g, want 0", tc, got)
		}
		if got := d.F(-7.3, tc); got != 0 {
			t.Fatalf("F(-7.3, %d) = %g, want 0", tc, got)
		}
	}
}

func TestFIsCumulativePMF(t *testing.T) {
	d := mustNew(t, 30, probspec.LabelCounts{2: 10, 3: 10, 4: 10})
	for _, tc := range []int{1, 5, 50} {
		sum := 0.0
		for k := 0; k <= d.N(); k++ {
			sum += d.PMF(float64(k), tc)
			if !almostEqual(sum, d.F(float64(k), tc), 1e-9) {
				t.Fatalf("t=%d k=%d: cumsum %g, F %g", tc, k, sum, d.F(float64(k), tc))
			}
		}
	}
}

func TestMonotonicity(t *testing.T) {
	d := mustNew(t, 25, probspec.Uniform(0.4))
	// F non-decreasing in k
	for _, tc := range []int{1, 3, 20} {
		prev := 0.0
		for k := 0; k <= d.N(); k++ {
			f := d.F(float64(k), tc)
			if f < prev {
				t.Fatalf("F decreasing in k at k=%d t=%d", k, tc)
			}
			prev = f
		}
	}
	// F non-increasing in t: a larger field of classifiers shifts the max up
	for k := 0; k < d.N(); k++ {
		prev := math.Inf(1)
		for _, tc := range []int{1, 2, 4, 8, 16} {
			f := d.F(float64(k), tc)
			if f > prev+1e-15 {
				t.Fatalf("F increasing in t at k=%d t=%d", k, tc)
			}
			prev = f
		}
	}
}

func TestBaselineNonDecreasingInT(t *testing.T) {
	d := mustNew(t, 50, probspec.Uniform(0.5))
	prev := 0.0
	for _, tc := range []int{1, 2, 5, 10, 100, 1000} {
		b := d.Baseline(tc)
		if b < prev-1e-12 {
			t.Fatalf("baseline dropped at t=%d: %g < %g", tc, b, prev)
		}
		prev = b
	}
}

func TestSingleClassifierReducesToBase(t *testing.T) {
	ps := []float64{0.5, 0.2, 0.8, 0.5, 0.1}
	d := mustNew(t, 5, probspec.PerExample(ps))
	base := poibin.New(ps)
	for k := -1; k <= 6; k++ {
		if got, want := d.F(float64(k), 1), base.CDF(float64(k)); !almostEqual(got, want, 1e-12) {
			t.Fatalf("F(%d, 1) = %g, base CDF %g", k, got, want)
		}
		if got, want := d.PMF(float64(k), 1), base.PMF(float64(k)); !almostEqual(got, want, 1e-12) {
			t.Fatalf("pmf(%d, 1) = %g, base pmf %g", k, got, want)
		}
	}
	// t=1 expectation is the base mean
	if !almostEqual(d.Expectation(1), base.Mean(), 1e-9) {
		t.Fatalf("expectation(1) = %g, mean %g", d.Expectation(1), base.Mean())
	}
}

func TestSpecForms(t *testing.T) {
	const n, tc = 100, 10
	scalar, err := Baseline(n, probspec.Uniform(0.5), tc)
	if err != nil {
		t.Fatal(err)
	}
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 0.5
	}
	fromSeq, err := Baseline(n, probspec.PerExample(seq), tc)
	if err != nil {
		t.Fatal(err)
	}
	if scalar != fromSeq {
		t.Fatalf("scalar %g != sequence %g", scalar, fromSeq)
	}

	mixed := append(repeat(0.5, 50), repeat(0.2, 50)...)
	fromMixed, err := Baseline(n, probspec.PerExample(mixed), tc)
	if err != nil {
		t.Fatal(err)
	}
	fromCounts, err := Baseline(n, probspec.LabelCounts{2: 50, 5: 50}, tc)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(fromMixed, fromCounts, 1e-12) {
		t.Fatalf("sequence %g != mapping %g", fromMixed, fromCounts)
	}
	// order of concatenation must not matter
	reversed := append(repeat(0.2, 50), repeat(0.5, 50)...)
	fromReversed, err := Baseline(n, probspec.PerExample(reversed), tc)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(fromMixed, fromReversed, 1e-12) {
		t.Fatalf("order changed the baseline: %g vs %g", fromMixed, fromReversed)
	}
}

func TestMappingMismatchFails(t *testing.T) {
	if _, err := Baseline(100, probspec.LabelCounts{2: 50, 5: 40}, 10); err == nil {
		t.Fatal("mismatched mapping accepted")
	}
}

func TestPValueAtZeroAccuracy(t *testing.T) {
	d := mustNew(t, 10, probspec.Uniform(0.5))
	for _, tc := range []int{1, 7} {
		if got := d.PValue(0, tc); got != 1 {
			t.Fatalf("PValue(0, %d) = %g, want 1", tc, got)
		}
		// any acc <= 1/n floors to a negative cutoff
		if got := d.PValue(0.05, tc); got != 1 {
			t.Fatalf("PValue(0.05, %d) = %g, want 1", tc, got)
		}
	}
	// perfect observed accuracy: only a perfect random run ties it
	p := d.PValue(1, 1)
	if !almostEqual(p, math.Pow(0.5, 10), 1e-12) {
		t.Fatalf("PValue(1, 1) = %g", p)
	}
}

func TestSingleExampleBaseline(t *testing.T) {
	b, err := Baseline(1, probspec.Uniform(0.5), 1)
	if err != nil {
		t.Fatal(err)
	}
	if b != 0.5 {
		t.Fatalf("baseline = %g, want 0.5", b)
	}
}

func TestBaselineGrowsWithReuse(t *testing.T) {
	// the published motivating case: 50-50 binary task, many reuses
	d := mustNew(t, 100, probspec.Uniform(0.5))
	b1 := d.Baseline(1)
	b1000 := d.Baseline(1000)
	if !almostEqual(b1, 0.5, 1e-9) {
		t.Fatalf("baseline(1) = %g", b1)
	}
	if b1000 < 0.6 {
		t.Fatalf("baseline(1000) = %g, expected well above chance", b1000)
	}
	if b1000 > 1 {
		t.Fatalf("baseline(1000) = %g, above 1", b1000)
	}
}

func TestCheckT(t *testing.T) {
	if err := CheckT(0); err == nil {
		t.Fatal("t = 0 accepted")
	}
	if _, err := Baseline(10, probspec.Uniform(0.5), -1); err == nil {
		t.Fatal("t = -1 accepted")
	}
}

func repeat(p float64, n int) []float64 {
	ps := make([]float64, n)
	for i := range ps {
		ps[i] = p
	}
	return ps
}
