package models

import (
	"fmt"
	"time"
)

// NumericConfidencePercent is the confidence implied by a numeric interval
// response. The input form asks for a 90% confidence interval, so the interval
// itself encodes the uncertainty and the stated confidence is fixed.
const NumericConfidencePercent = 90

// BooleanAnswer is a user's answer to a boolean challenge. Confidence is the
// probability assigned to the chosen answer, so it can never be below
// indifference (50).
type BooleanAnswer struct {
	Answer            bool    `json:"answer"`
	ConfidencePercent float64 `json:"confidence_percent"`
}

// NumericAnswer is a stated confidence interval for a numeric challenge,
// inclusive at both bounds.
type NumericAnswer struct {
	CiLow  float64 `json:"ci_low"`
	CiHigh float64 `json:"ci_high"`
}

// Response is a user's single answer to a challenge. A challenge accepts at
// most one response, ever; responses are immutable once created.
type Response struct {
	ID                int64          `json:"id"`
	ChallengeID       int64          `json:"-"`
	UserID            int64          `json:"-"`
	ConfidencePercent float64        `json:"confidence_percent"`
	Correct           bool           `json:"correct"`
	Type              AnswerType     `json:"response_type"`
	Boolean           *BooleanAnswer `json:"boolean,omitempty"`
	Numeric           *NumericAnswer `json:"numeric,omitempty"`
	CreatedAt         time.Time      `json:"creation_time"`
}

func (r *Response) Validate() error {
	if !ValidAnswerTypes[r.Type] {
		return fmt.Errorf("response: illegal response type %q", r.Type)
	}
	if err := checkOneBranch(string(r.Type), r.Boolean != nil, r.Numeric != nil); err != nil {
		return fmt.Errorf("response: %w", err)
	}
	return CheckConfidencePercent(r.ConfidencePercent)
}

// CheckConfidencePercent rejects confidence values outside the open interval
// (0, 100). The boundary values would make a trial degenerate.
func CheckConfidencePercent(pct float64) error {
	if !(pct > 0 && pct < 100) {
		return fmt.Errorf("confidence value out of bounds or at forbidden extreme (%v)", pct)
	}
	return nil
}

// ScoreEntry is the per-response view served on the scores listing.
type ScoreEntry struct {
	CreatedAt         time.Time `json:"creation_time"`
	Correct           bool      `json:"correct"`
	ConfidencePercent float64   `json:"confidence_percent"`
}
