package calibration

import (
	"math"
	"math/rand"
	"testing"
)

func makeTrials(n int, rng *rand.Rand) []Trial {
	trials := make([]Trial, n)
	for i := range trials {
		trials[i] = Trial{
			Confidence: 0.5 + rng.Float64()*0.49,
			Correct:    rng.Float64() < 0.5,
		}
	}
	return trials
}

func TestPlausibilityDeclinesOutsideRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, n := range []int{0, 1, MinDataPoints - 1, MaxDataPointsExact + 1, 200} {
		v, err := Plausibility(makeTrials(n, rng))
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if v != nil {
			t.Errorf("n=%d: got verdict %+v, want none", n, v)
		}
	}
}

func TestPlausibilityTripleSumsToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{MinDataPoints, 10, 20, MaxDataPointsExact} {
		for trial := 0; trial < 5; trial++ {
			v, err := Plausibility(makeTrials(n, rng))
			if err != nil {
				t.Fatalf("n=%d: unexpected error: %v", n, err)
			}
			if v == nil {
				t.Fatalf("n=%d: expected a verdict", n)
			}
			sum := v.ProbFewer + v.ProbSame + v.ProbMore
			if math.Abs(sum-1) > epsilon {
				t.Errorf("n=%d: fewer+same+more = %f, want 1", n, sum)
			}
		}
	}
}

func TestPlausibilityBoundaryCounts(t *testing.T) {
	// All wrong: nothing can be fewer than zero correct.
	allWrong := make([]Trial, 10)
	for i := range allWrong {
		allWrong[i] = Trial{Confidence: 0.9, Correct: false}
	}
	v, err := Plausibility(allWrong)
	if err != nil {
		t.Fatal(err)
	}
	if v.ProbFewer != 0 {
		t.Errorf("all wrong: ProbFewer = %f, want 0", v.ProbFewer)
	}
	if math.Abs(v.ProbMore-(1-v.ProbSame)) > epsilon {
		t.Errorf("all wrong: ProbMore = %f, want 1 - ProbSame = %f", v.ProbMore, 1-v.ProbSame)
	}

	// All correct: nothing can be more than all of them.
	allRight := make([]Trial, 10)
	for i := range allRight {
		allRight[i] = Trial{Confidence: 0.9, Correct: true}
	}
	v, err = Plausibility(allRight)
	if err != nil {
		t.Fatal(err)
	}
	if v.ProbMore != 0 {
		t.Errorf("all correct: ProbMore = %f, want 0", v.ProbMore)
	}
	if math.Abs(v.ProbFewer-(1-v.ProbSame)) > epsilon {
		t.Errorf("all correct: ProbFewer = %f, want 1 - ProbSame = %f", v.ProbFewer, 1-v.ProbSame)
	}
}

func TestPlausibilityOverconfidentRun(t *testing.T) {
	// Stated 95% confidence but only half correct: seeing this few correct
	// answers should be very unlikely for a calibrated predictor.
	trials := make([]Trial, 20)
	for i := range trials {
		trials[i] = Trial{Confidence: 0.95, Correct: i%2 == 0}
	}
	v, err := Plausibility(trials)
	if err != nil {
		t.Fatal(err)
	}
	if v.ProbMore < 0.99 {
		t.Errorf("overconfident run: ProbMore = %f, want > 0.99", v.ProbMore)
	}
}

func TestPlausibilityRejectsBadConfidence(t *testing.T) {
	trials := makeTrials(10, rand.New(rand.NewSource(4)))
	trials[3].Confidence = 1.5
	if _, err := Plausibility(trials); err == nil {
		t.Error("expected error for confidence > 1")
	}
	trials[3].Confidence = math.NaN()
	if _, err := Plausibility(trials); err == nil {
		t.Error("expected error for NaN confidence")
	}
}
