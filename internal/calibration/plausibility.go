package calibration

import "fmt"

// Method names the algorithm behind every verdict this package produces.
const Method = "poisson-binomial-dft-pmf"

// Trial is one resolved answer: the probability the answerer assigned to being
// correct, in [0, 1], and whether they actually were.
type Trial struct {
	Confidence float64
	Correct    bool
}

// Verdict is the plausibility triple for an observed correct count k* under
// the hypothesis that every trial was exactly as well calibrated as stated:
// the probability of fewer than, exactly, and more than k* correct answers.
// The three values sum to 1.
type Verdict struct {
	ProbFewer float64 `json:"prob_fewer"`
	ProbSame  float64 `json:"prob_same"`
	ProbMore  float64 `json:"prob_more"`
}

// Plausibility computes the verdict for a sequence of trials. It returns a nil
// verdict (and no error) when the trial count is outside
// [MinDataPoints, MaxDataPointsExact]; the engine never fabricates a
// probability it cannot compute exactly. A confidence outside [0, 1] is a
// contract violation and returns an error.
func Plausibility(trials []Trial) (*Verdict, error) {
	if len(trials) < MinDataPoints {
		return nil, nil
	}
	if len(trials) > MaxDataPointsExact {
		return nil, nil
	}

	probs := make([]float64, len(trials))
	numCorrect := 0
	for i, tr := range trials {
		if !(tr.Confidence >= 0 && tr.Confidence <= 1) {
			return nil, fmt.Errorf("bad confidence: %v", tr.Confidence)
		}
		probs[i] = clampProbability(tr.Confidence)
		if tr.Correct {
			numCorrect++
		}
	}

	pmfs := make([]float64, len(probs)+1)
	for k := range pmfs {
		pmfs[k] = PMF(probs, k)
	}

	// The unclamped pmf values are used for the partial sums; only the final
	// outputs are corrected for floating-point artifacts near 0 and 1.
	v := &Verdict{ProbSame: pmfs[numCorrect]}
	switch numCorrect {
	case 0:
		v.ProbMore = 1 - v.ProbSame
	case len(probs):
		v.ProbFewer = 1 - v.ProbSame
	default:
		for _, p := range pmfs[:numCorrect] {
			v.ProbFewer += p
		}
		for _, p := range pmfs[numCorrect+1:] {
			v.ProbMore += p
		}
	}
	v.ProbFewer = clampUnit(v.ProbFewer)
	v.ProbSame = clampUnit(v.ProbSame)
	v.ProbMore = clampUnit(v.ProbMore)
	return v, nil
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
