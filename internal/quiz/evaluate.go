package quiz

import (
	"fmt"

	"github.com/steinarvk/brator/internal/models"
)

// ValidateAnswer checks a submitted answer's own fields, before it is matched
// against the challenge. Violations are the caller's fault and wrap
// ErrBadRequest.
func ValidateAnswer(req *models.SubmitResponseRequest) error {
	switch req.Type() {
	case models.AnswerBoolean:
		b := req.Boolean
		if err := models.CheckConfidencePercent(b.ConfidencePercent); err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		// Confidence is the probability assigned to the chosen answer, so it
		// cannot be below indifference.
		if b.ConfidencePercent < 50 {
			return fmt.Errorf("%w: confidence for a boolean question should not be lower than 50%%", ErrBadRequest)
		}
	case models.AnswerNumeric:
		n := req.Numeric
		if n.CiLow > n.CiHigh {
			return fmt.Errorf("%w: confidence interval is reversed (low: %v, high: %v)", ErrBadRequest, n.CiLow, n.CiHigh)
		}
	default:
		return fmt.Errorf("%w: exactly one answer branch must be set", ErrBadRequest)
	}
	return nil
}

// Correctness judges a validated answer against the fact's correct answer.
// Boolean answers must match exactly; a numeric answer is correct when the
// correct value lies inside the stated interval, bounds included. The caller
// has already checked that the answer type matches the fact type.
func Correctness(fact *models.Fact, req *models.SubmitResponseRequest) (bool, error) {
	switch {
	case fact.Type == models.AnswerBoolean && req.Boolean != nil:
		return fact.Boolean.CorrectAnswer == req.Boolean.Answer, nil
	case fact.Type == models.AnswerNumeric && req.Numeric != nil:
		x := fact.Numeric.CorrectAnswer
		return req.Numeric.CiLow <= x && x <= req.Numeric.CiHigh, nil
	}
	return false, fmt.Errorf("correctness: answer type does not match fact type %q", fact.Type)
}

// ConfidencePercent returns the stated confidence for an answer. Boolean
// answers carry it explicitly; numeric interval answers are fixed at 90 by
// convention of the input form.
func ConfidencePercent(req *models.SubmitResponseRequest) float64 {
	if req.Boolean != nil {
		return req.Boolean.ConfidencePercent
	}
	return models.NumericConfidencePercent
}
