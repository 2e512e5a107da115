// Package intake validates applicant-supplied answers against a campaign's
// dynamic question set before anything is persisted.
package intake

import (
	"clubhub/internal/application/models"
	campaignmodels "clubhub/internal/campaign/models"
	dErrors "clubhub/pkg/domain-errors"
)

// Answer error kinds reported per question ID.
const (
	ErrRequired      = "required"
	ErrTooLong       = "too_long"
	ErrInvalidOption = "invalid_option"
)

// ValidateAnswers checks every answer against its question definition.
//
// All problems are collected into one CodeValidation error with per-question
// fields, so callers can render every violation at once rather than fixing
// them one round-trip at a time. Questions with unknown types validate as
// opaque text (required and max_length still apply); their IDs are returned
// as warnings for the caller to log.
func ValidateAnswers(questions []campaignmodels.ApplicationQuestion, answers map[string]models.Answer) (warnings []string, err error) {
	fields := make(map[string]string)

	for _, q := range questions {
		if !q.Type.IsKnown() {
			warnings = append(warnings, q.ID)
		}
		if kind := checkAnswer(q, answers[q.ID]); kind != "" {
			fields[q.ID] = kind
		}
	}

	if len(fields) > 0 {
		return warnings, dErrors.WithFields(dErrors.CodeValidation, "application answers are invalid", fields)
	}
	return warnings, nil
}

func checkAnswer(q campaignmodels.ApplicationQuestion, a models.Answer) string {
	if a.IsEmpty() {
		if q.Required {
			return ErrRequired
		}
		return ""
	}

	if q.Type.IsMultiSelect() {
		for _, sel := range a.Selections {
			if !q.HasOption(sel) {
				return ErrInvalidOption
			}
		}
		return ""
	}

	if q.MaxLength > 0 && len([]rune(a.Text)) > q.MaxLength {
		return ErrTooLong
	}
	if q.Type.NeedsOptions() && q.Type.IsKnown() && !q.HasOption(a.Text) {
		return ErrInvalidOption
	}
	return ""
}
