package models

import (
	"strings"

	dErrors "clubhub/pkg/domain-errors"
)

// QuestionType discriminates the dynamic question schema. Renderer and
// validator share this one enumeration so per-type rules live in one place.
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeSelect   QuestionType = "select"
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeCheckbox QuestionType = "checkbox"
)

// IsKnown reports whether the type is one of the supported kinds. Unknown
// types are tolerated: their answers pass through as opaque text so an old
// server can store submissions authored against a newer question catalog.
func (t QuestionType) IsKnown() bool {
	switch t {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeSelect, QuestionTypeRadio, QuestionTypeCheckbox:
		return true
	}
	return false
}

// NeedsOptions reports whether the type requires a non-empty option list.
func (t QuestionType) NeedsOptions() bool {
	switch t {
	case QuestionTypeSelect, QuestionTypeRadio, QuestionTypeCheckbox:
		return true
	}
	return false
}

// IsMultiSelect reports whether answers are sets of options rather than a
// single value.
func (t QuestionType) IsMultiSelect() bool {
	return t == QuestionTypeCheckbox
}

// ApplicationQuestion is a value object embedded in a Campaign. Questions are
// frozen once the campaign has received applications.
type ApplicationQuestion struct {
	ID        string       `json:"id"`
	Prompt    string       `json:"question"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	MaxLength int          `json:"max_length,omitempty"`
	Options   []string     `json:"options,omitempty"`
}

// ValidateDefinition checks a question as authored by a club manager.
func (q ApplicationQuestion) ValidateDefinition() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return dErrors.New(dErrors.CodeValidation, "question text is required")
	}
	if q.Type.NeedsOptions() && len(q.Options) == 0 {
		return dErrors.New(dErrors.CodeValidation, "question of type "+string(q.Type)+" must have options")
	}
	if q.MaxLength < 0 {
		return dErrors.New(dErrors.CodeValidation, "question max_length must be positive")
	}
	return nil
}

// HasOption reports whether v is one of the question's authored options.
func (q ApplicationQuestion) HasOption(v string) bool {
	for _, opt := range q.Options {
		if opt == v {
			return true
		}
	}
	return false
}
