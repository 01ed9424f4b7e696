package facts

import (
	"testing"

	"github.com/steinarvk/brator/internal/models"
)

func numericFact(question string, answer float64) *models.Fact {
	return &models.Fact{
		Key:  "test-fact",
		Type: models.AnswerNumeric,
		Numeric: &models.NumericFact{
			QuestionText:  question,
			Unit:          models.UnitMeters,
			CorrectAnswer: answer,
		},
	}
}

func TestContentHashStable(t *testing.T) {
	a, err := ContentHash(numericFact("How tall is Mount Everest?", 8849))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ContentHash(numericFact("How tall is Mount Everest?", 8849))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same payload hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestContentHashDistinguishesPayloads(t *testing.T) {
	base, _ := ContentHash(numericFact("How tall is Mount Everest?", 8849))

	changedAnswer, _ := ContentHash(numericFact("How tall is Mount Everest?", 8850))
	if base == changedAnswer {
		t.Error("changed answer produced the same hash")
	}

	changedQuestion, _ := ContentHash(numericFact("How deep is the Mariana Trench?", 8849))
	if base == changedQuestion {
		t.Error("changed question produced the same hash")
	}
}

func TestContentHashIgnoresKey(t *testing.T) {
	a := numericFact("How tall is Mount Everest?", 8849)
	b := numericFact("How tall is Mount Everest?", 8849)
	b.Key = "another-key"

	ha, _ := ContentHash(a)
	hb, _ := ContentHash(b)
	if ha != hb {
		t.Error("key should not contribute to the content hash")
	}
}

func TestContentHashCrossType(t *testing.T) {
	boolean := &models.Fact{
		Key:  "k",
		Type: models.AnswerBoolean,
		Boolean: &models.BooleanFact{
			QuestionText:  "Is water wet?",
			CorrectAnswer: true,
		},
	}
	hb, err := ContentHash(boolean)
	if err != nil {
		t.Fatal(err)
	}
	hn, _ := ContentHash(numericFact("Is water wet?", 1))
	if hb == hn {
		t.Error("different payload types produced the same hash")
	}
}

func TestContentHashRejectsBadType(t *testing.T) {
	if _, err := ContentHash(&models.Fact{Key: "k", Type: "mystery"}); err == nil {
		t.Error("expected error for unknown fact type")
	}
}
