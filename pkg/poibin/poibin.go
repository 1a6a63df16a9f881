// Package poibin implements the Poisson binomial distribution: the sum of n
// independent Bernoulli trials with possibly different success probabilities.
//
// The pmf is recovered by inverting the characteristic function with a
// discrete Fourier transform, which stays accurate for heterogeneous
// probabilities at n in the thousands.
package poibin

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dist is a Poisson binomial distribution over {0, ..., n}. The pmf and cdf
// tables are computed once at construction; all queries afterwards are table
// lookups, so a Dist is cheap to query and safe for concurrent reads.
type Dist struct {
	p   []float64
	pmf []float64
	cdf []float64
}

// New builds the distribution for the given per-trial success probabilities.
// Construction is the expensive step: O(n^2) for the characteristic function
// plus one FFT of length n+1. Probabilities are expected to lie in [0, 1];
// callers validate before construction.
func New(p []float64) *Dist {
	n := len(p)
	m := n + 1

	// Characteristic function at the m-th roots of unity. The upper half is
	// the conjugate mirror of the lower half, so only half is computed.
	chi := make([]complex128, m)
	omega := 2 * math.Pi / float64(m)
	for l := 0; l <= m/2; l++ {
		w := complex(math.Cos(omega*float64(l)), math.Sin(omega*float64(l)))
		prod := complex(1, 0)
		for _, pj := range p {
			prod *= complex(1-pj, 0) + complex(pj, 0)*w
		}
		chi[l] = prod
	}
	for l := m/2 + 1; l < m; l++ {
		chi[l] = cmplx.Conj(chi[m-l])
	}

	coeff := fourier.NewCmplxFFT(m).Coefficients(nil, chi)

	d := &Dist{
		p:   append([]float64(nil), p...),
		pmf: make([]float64, m),
		cdf: make([]float64, m),
	}
	sum := 0.0
	for k, c := range coeff {
		v := real(c) / float64(m)
		if v < 0 {
			// FFT round-off can leave mass a hair below zero.
			v = 0
		}
		d.pmf[k] = v
		sum += v
		if sum > 1 {
			sum = 1
		}
		d.cdf[k] = sum
	}
	d.cdf[n] = 1
	return d
}

// N is the number of trials.
func (d *Dist) N() int { return len(d.p) }

// PMF is the probability that the sum of the trials equals exactly int(k).
func (d *Dist) PMF(k float64) float64 {
	ki := int(math.Floor(k))
	if ki < 0 || ki >= len(d.pmf) {
		return 0
	}
	return d.pmf[ki]
}

// CDF is the probability that the sum of the trials is int(k) or fewer.
func (d *Dist) CDF(k float64) float64 {
	ki := int(math.Floor(k))
	if ki < 0 {
		return 0
	}
	if ki >= d.N() {
		return 1
	}
	return d.cdf[ki]
}

func (d *Dist) Bounds() (float64, float64) {
	return 0, float64(d.N())
}

func (d *Dist) Step() float64 {
	return 1
}

func (d *Dist) Mean() float64 {
	mu := 0.0
	for _, p := range d.p {
		mu += p
	}
	return mu
}

func (d *Dist) Variance() float64 {
	v := 0.0
	for _, p := range d.p {
		v += p * (1 - p)
	}
	return v
}

// NormalApprox returns the normal approximation of d, usable when the
// variance is large enough that continuity error is acceptable.
func (d *Dist) NormalApprox() distuv.Normal {
	return distuv.Normal{Mu: d.Mean(), Sigma: math.Sqrt(d.Variance())}
}
