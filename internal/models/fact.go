package models

import (
	"fmt"
	"time"
)

// AnswerType discriminates the payload branch of a fact, challenge or response.
// Additional answer types are added by extending this set and the switches that
// consume it, not by inheritance.
type AnswerType string

const (
	AnswerBoolean AnswerType = "boolean"
	AnswerNumeric AnswerType = "numeric"
)

var ValidAnswerTypes = map[AnswerType]bool{
	AnswerBoolean: true,
	AnswerNumeric: true,
}

type Unit string

const (
	UnitNone       Unit = "none"
	UnitGramsPerCC Unit = "g/cm³"
	UnitSquareKM   Unit = "sq km"
	UnitPercent    Unit = "percent"
	UnitKelvin     Unit = "kelvin"
	UnitCelsius    Unit = "celsius"
	UnitMeters     Unit = "meters"
	UnitMinutes    Unit = "minutes"
	UnitSeconds    Unit = "seconds"
	UnitGrams      Unit = "grams"
)

var ValidUnits = map[Unit]bool{
	UnitNone:       true,
	UnitGramsPerCC: true,
	UnitSquareKM:   true,
	UnitPercent:    true,
	UnitKelvin:     true,
	UnitCelsius:    true,
	UnitMeters:     true,
	UnitMinutes:    true,
	UnitSeconds:    true,
	UnitGrams:      true,
}

type BooleanFact struct {
	QuestionText  string `json:"question_text"`
	CorrectAnswer bool   `json:"correct_answer"`
}

type NumericFact struct {
	QuestionText  string  `json:"question_text"`
	Unit          Unit    `json:"correct_answer_unit"`
	CorrectAnswer float64 `json:"correct_answer"`
}

// Fact is one immutable version of a question. A key identifies the fact across
// versions; exactly one version per key is active at a time, distinguished by
// ContentHash. Deactivated versions are kept, never deleted.
type Fact struct {
	ID          int64        `json:"id"`
	Key         string       `json:"key"`
	Active      bool         `json:"active"`
	Category    *string      `json:"category,omitempty"`
	Type        AnswerType   `json:"fact_type"`
	ContentHash string       `json:"content_hash"`
	Boolean     *BooleanFact `json:"boolean,omitempty"`
	Numeric     *NumericFact `json:"numeric,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Validate enforces the entity invariants: a non-empty key, a known type tag,
// and exactly the payload branch named by the tag set. Violations are
// programming errors and must abort before persistence.
func (f *Fact) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("fact: no key supplied")
	}
	if !ValidAnswerTypes[f.Type] {
		return fmt.Errorf("fact %q: illegal fact type %q", f.Key, f.Type)
	}
	if err := checkOneBranch(string(f.Type), f.Boolean != nil, f.Numeric != nil); err != nil {
		return fmt.Errorf("fact %q: %w", f.Key, err)
	}
	if f.Numeric != nil && !ValidUnits[f.Numeric.Unit] {
		return fmt.Errorf("fact %q: not a valid unit: %q", f.Key, f.Numeric.Unit)
	}
	return nil
}

// QuestionText returns the prompt of whichever payload branch is set.
func (f *Fact) QuestionText() string {
	switch f.Type {
	case AnswerBoolean:
		if f.Boolean != nil {
			return f.Boolean.QuestionText
		}
	case AnswerNumeric:
		if f.Numeric != nil {
			return f.Numeric.QuestionText
		}
	}
	return ""
}

// checkOneBranch verifies that exactly the branch named by the tag is set.
// The tag values line up with the branch order: boolean, numeric.
func checkOneBranch(tag string, hasBoolean, hasNumeric bool) error {
	want := map[string]bool{
		string(AnswerBoolean): hasBoolean,
		string(AnswerNumeric): hasNumeric,
	}
	if !want[tag] {
		return fmt.Errorf("type is %s but the %s payload is not set", tag, tag)
	}
	count := 0
	if hasBoolean {
		count++
	}
	if hasNumeric {
		count++
	}
	if count > 1 {
		return fmt.Errorf("multiple payload branches set")
	}
	return nil
}

type FactCategory struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}
