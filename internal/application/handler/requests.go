package handler

import (
	"clubhub/internal/application/models"
)

// SubmitRequest is the payload for POST /campaigns/{campaignID}/applications.
// Answers are keyed by question ID; values are strings or string arrays
// depending on the question type.
type SubmitRequest struct {
	Message string                   `json:"application_message,omitempty"`
	Answers map[string]models.Answer `json:"application_answers,omitempty"`
}

// UpdateRequest is the payload for PATCH /applications/{applicationID}.
type UpdateRequest struct {
	Message string                   `json:"application_message,omitempty"`
	Answers map[string]models.Answer `json:"application_answers,omitempty"`
}

// ApproveRequest is the payload for POST /applications/{applicationID}/approve.
type ApproveRequest struct {
	Role  string `json:"role,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// RejectRequest is the payload for POST /applications/{applicationID}/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}
