// Package calibration computes exact plausibility verdicts for sequences of
// confidence-tagged answers: given each answer's stated probability of being
// correct, how likely a perfectly calibrated predictor would be to produce
// fewer, the same, or more correct answers than were actually observed. The
// underlying distribution of the correct-answer count is Poisson binomial.
package calibration

import (
	"math"
	"math/cmplx"
)

const (
	// MinDataPoints and MaxDataPointsExact bound the window sizes the exact
	// computation accepts. Outside this range the engine declines rather than
	// fall back to an approximation.
	MinDataPoints      = 5
	MaxDataPointsExact = 50

	// minProbability keeps per-trial probabilities away from the degenerate
	// 0/1 endpoints, which would zero out factors of the generating function.
	minProbability = 0.001
	maxProbability = 1 - minProbability
)

func clampProbability(p float64) float64 {
	if p < minProbability {
		return minProbability
	}
	if p > maxProbability {
		return maxProbability
	}
	return p
}

// PMF returns the probability of exactly k successes among independent trials
// with the given per-trial success probabilities.
//
// The closed form evaluates the factorized probability generating function
// Π_m (1 + p_m·(ω^l − 1)) at the (n+1)-th roots of unity ω^l and inverse
// transforms to recover the mass at k. This is exact; no enumeration of the
// 2^n outcomes is involved.
func PMF(ps []float64, k int) float64 {
	n := len(ps)
	if k < 0 || k > n {
		return 0
	}
	omega := cmplx.Exp(complex(0, 2*math.Pi/float64(n+1)))
	var rv complex128
	for l := 0; l <= n; l++ {
		omegaL := cmplx.Pow(omega, complex(float64(l), 0))
		clk := cmplx.Pow(omega, complex(float64(-l*k), 0))
		el := complex(1, 0)
		for _, p := range ps {
			el *= 1 + complex(p, 0)*(omegaL-1)
		}
		rv += clk * el
	}
	return real(rv) / float64(n+1)
}
