package models

import "testing"

func TestFactValidateRequiresOneBranch(t *testing.T) {
	boolBranch := &BooleanFact{QuestionText: "q", CorrectAnswer: true}
	numBranch := &NumericFact{QuestionText: "q", Unit: UnitNone, CorrectAnswer: 1}

	cases := []struct {
		name string
		fact Fact
		ok   bool
	}{
		{"boolean", Fact{Key: "k", Type: AnswerBoolean, Boolean: boolBranch}, true},
		{"numeric", Fact{Key: "k", Type: AnswerNumeric, Numeric: numBranch}, true},
		{"no key", Fact{Type: AnswerBoolean, Boolean: boolBranch}, false},
		{"bad type", Fact{Key: "k", Type: "essay", Boolean: boolBranch}, false},
		{"no payload", Fact{Key: "k", Type: AnswerBoolean}, false},
		{"wrong payload", Fact{Key: "k", Type: AnswerBoolean, Numeric: numBranch}, false},
		{"both payloads", Fact{Key: "k", Type: AnswerBoolean, Boolean: boolBranch, Numeric: numBranch}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fact.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("invalid fact accepted")
			}
		})
	}
}

func TestCheckConfidencePercent(t *testing.T) {
	for _, pct := range []float64{0.1, 50, 99.9} {
		if err := CheckConfidencePercent(pct); err != nil {
			t.Errorf("confidence %v rejected: %v", pct, err)
		}
	}
	for _, pct := range []float64{0, 100, -5, 120} {
		if err := CheckConfidencePercent(pct); err == nil {
			t.Errorf("confidence %v accepted", pct)
		}
	}
}

func TestSubmitResponseRequestType(t *testing.T) {
	boolReq := SubmitResponseRequest{Boolean: &BooleanAnswer{Answer: true, ConfidencePercent: 60}}
	if got := boolReq.Type(); got != AnswerBoolean {
		t.Errorf("boolean request type = %q", got)
	}
	numReq := SubmitResponseRequest{Numeric: &NumericAnswer{CiLow: 1, CiHigh: 2}}
	if got := numReq.Type(); got != AnswerNumeric {
		t.Errorf("numeric request type = %q", got)
	}
	empty := SubmitResponseRequest{}
	if got := empty.Type(); got != "" {
		t.Errorf("empty request type = %q, want empty", got)
	}
	both := SubmitResponseRequest{Boolean: boolReq.Boolean, Numeric: numReq.Numeric}
	if got := both.Type(); got != "" {
		t.Errorf("double-branch request type = %q, want empty", got)
	}
}
