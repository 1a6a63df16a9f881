// Package probspec normalizes the three accepted ways of specifying
// per-example chance-guessing probabilities into one explicit probability
// sequence of length n.
package probspec

import (
	"errors"
	"fmt"
)

var (
	// ErrCountMismatch reports a label-count mapping whose example counts do
	// not add up to n.
	ErrCountMismatch = errors.New("label-count mapping inconsistent with n")

	// ErrUnrecognized reports a probability argument of an unsupported shape.
	ErrUnrecognized = errors.New("unrecognized probability specification")
)

// Spec is one of the three forms a caller can use to describe per-example
// success probabilities: Uniform, PerExample, or LabelCounts.
type Spec interface {
	// Probabilities expands the spec into n per-trial probabilities.
	Probabilities(n int) ([]float64, error)
}

// Uniform applies a single guessing probability to every example.
type Uniform float64

func (u Uniform) Probabilities(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of examples must be positive, got %d", n)
	}
	if err := checkProb(float64(u)); err != nil {
		return nil, err
	}
	ps := make([]float64, n)
	for i := range ps {
		ps[i] = float64(u)
	}
	return ps, nil
}

// PerExample gives each example its own guessing probability, in example
// order. The length must equal n.
type PerExample []float64

func (pe PerExample) Probabilities(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of examples must be positive, got %d", n)
	}
	if len(pe) != n {
		return nil, fmt.Errorf("probability sequence has %d entries, want %d", len(pe), n)
	}
	for _, p := range pe {
		if err := checkProb(p); err != nil {
			return nil, err
		}
	}
	return append([]float64(nil), pe...), nil
}

// LabelCounts maps a label-set size to the number of examples with that many
// labels. An example with k labels is guessed correctly with probability 1/k.
// The counts must total n; iteration order does not affect results because
// the distribution is exchangeable over trial order.
type LabelCounts map[int]int

func (lc LabelCounts) Probabilities(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of examples must be positive, got %d", n)
	}
	total := 0
	for numLabels, numExamples := range lc {
		if numLabels < 1 {
			return nil, fmt.Errorf("label count must be >= 1, got %d", numLabels)
		}
		if numExamples < 0 {
			return nil, fmt.Errorf("example count must be >= 0, got %d for %d labels", numExamples, numLabels)
		}
		total += numExamples
	}
	if total != n {
		return nil, fmt.Errorf("%w: counts total %d, want %d", ErrCountMismatch, total, n)
	}
	ps := make([]float64, 0, n)
	for numLabels, numExamples := range lc {
		p := 1 / float64(numLabels)
		for i := 0; i < numExamples; i++ {
			ps = append(ps, p)
		}
	}
	return ps, nil
}

// From converts a dynamically typed argument (as decoded from JSON or built
// by a CLI) into a Spec. Accepted shapes: a float or int probability, a
// []float64 sequence, or a map[int]int of label counts. Anything else is a
// caller defect and fails with ErrUnrecognized.
func From(arg any) (Spec, error) {
	switch v := arg.(type) {
	case float64:
		return Uniform(v), nil
	case float32:
		return Uniform(v), nil
	case int:
		return Uniform(v), nil
	case []float64:
		return PerExample(v), nil
	case map[int]int:
		return LabelCounts(v), nil
	case Spec:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnrecognized, arg)
	}
}

func checkProb(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("probability %g outside [0,1]", p)
	}
	return nil
}
