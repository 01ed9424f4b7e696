package models

// SubmitResponseRequest carries exactly one answer branch; the branch tag must
// match the challenge's type or the submission is rejected.
type SubmitResponseRequest struct {
	Boolean *BooleanAnswer `json:"boolean,omitempty"`
	Numeric *NumericAnswer `json:"numeric,omitempty"`
}

// Type returns the declared answer type, or "" when zero or both branches are
// set (which is malformed input, not a programming error).
func (r *SubmitResponseRequest) Type() AnswerType {
	switch {
	case r.Boolean != nil && r.Numeric == nil:
		return AnswerBoolean
	case r.Numeric != nil && r.Boolean == nil:
		return AnswerNumeric
	}
	return ""
}

// FactUpsert is the import payload for one fact version. Exactly one payload
// branch must be set.
type FactUpsert struct {
	Key      string       `json:"key"`
	Category *string      `json:"category,omitempty"`
	Boolean  *BooleanFact `json:"boolean,omitempty"`
	Numeric  *NumericFact `json:"numeric,omitempty"`
}

type ImportFactsResult struct {
	Imported int `json:"imported"`
}

type CategoryUpsert struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type ImportCategoriesResult struct {
	Imported int `json:"imported"`
}

type ScoreListResponse struct {
	Scores []ScoreEntry `json:"scores"`
}

type LargestBatchResponse struct {
	// BatchSize is nil until the user's first summary of any standard size.
	BatchSize *int `json:"batch_size"`
}
