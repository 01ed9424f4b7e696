package models

import (
	"fmt"
	"time"
)

// Challenge records that a fact was presented to a user. The uid is a random
// opaque identifier used by clients to address the challenge. At most one
// active challenge exists per user; the challenge is deactivated when it is
// responded to (resolved) or explicitly discarded.
type Challenge struct {
	ID        int64      `json:"id"`
	UID       string     `json:"uid"`
	UserID    int64      `json:"-"`
	FactID    int64      `json:"fact_id"`
	Active    bool       `json:"active"`
	Type      AnswerType `json:"challenge_type"`
	CreatedAt time.Time  `json:"creation_time"`
}

func (c *Challenge) Validate() error {
	if c.UID == "" {
		return fmt.Errorf("challenge: no uid supplied")
	}
	if !ValidAnswerTypes[c.Type] {
		return fmt.Errorf("challenge %s: illegal challenge type %q", c.UID, c.Type)
	}
	return nil
}

type BooleanPrompt struct {
	QuestionText string `json:"question_text"`
}

type NumericPrompt struct {
	QuestionText string `json:"question_text"`
	Unit         Unit   `json:"correct_answer_unit"`
}

// ChallengeView is what the presentation layer receives: the challenge plus the
// fact's question, without the answer. Exactly one prompt branch is set,
// matching Type.
type ChallengeView struct {
	UID       string         `json:"uid"`
	FactKey   string         `json:"fact_key"`
	Type      AnswerType     `json:"challenge_type"`
	Boolean   *BooleanPrompt `json:"boolean,omitempty"`
	Numeric   *NumericPrompt `json:"numeric,omitempty"`
	CreatedAt time.Time      `json:"creation_time"`
}

// NewChallengeView builds the serving view for a challenge over the given fact.
func NewChallengeView(c *Challenge, f *Fact) (*ChallengeView, error) {
	if err := checkOneBranch(string(c.Type), f.Boolean != nil, f.Numeric != nil); err != nil {
		return nil, fmt.Errorf("challenge %s: %w", c.UID, err)
	}
	view := &ChallengeView{
		UID:       c.UID,
		FactKey:   f.Key,
		Type:      c.Type,
		CreatedAt: c.CreatedAt,
	}
	switch c.Type {
	case AnswerBoolean:
		view.Boolean = &BooleanPrompt{QuestionText: f.Boolean.QuestionText}
	case AnswerNumeric:
		view.Numeric = &NumericPrompt{QuestionText: f.Numeric.QuestionText, Unit: f.Numeric.Unit}
	default:
		return nil, fmt.Errorf("challenge %s: illegal challenge type %q", c.UID, c.Type)
	}
	return view, nil
}
