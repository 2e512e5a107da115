package models

import (
	"encoding/json"
	"strings"

	dErrors "clubhub/pkg/domain-errors"
)

// Answer is one applicant answer. Single-valued question types populate
// Text; checkbox questions populate Selections. On the wire either a JSON
// string or an array of strings is accepted, matching the dynamic question
// schema.
type Answer struct {
	Text       string
	Selections []string
}

// TextAnswer builds a single-valued answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// MultiAnswer builds a checkbox answer.
func MultiAnswer(opts ...string) Answer { return Answer{Selections: opts} }

// IsEmpty reports whether the answer carries no content at all.
func (a Answer) IsEmpty() bool {
	if len(a.Selections) > 0 {
		return false
	}
	return strings.TrimSpace(a.Text) == ""
}

// IsMulti reports whether the answer is a set of selections.
func (a Answer) IsMulti() bool { return a.Selections != nil }

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsMulti() {
		return json.Marshal(a.Selections)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Answer{Text: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*a = Answer{Selections: list}
		return nil
	}
	return dErrors.New(dErrors.CodeInvalidInput, "answer must be a string or an array of strings")
}
