package handler

import (
	"time"

	"clubhub/internal/campaign/models"
	"clubhub/internal/campaign/service"
)

// QuestionPayload is the wire shape of one application question.
type QuestionPayload struct {
	ID        string   `json:"id,omitempty"`
	Question  string   `json:"question"`
	Type      string   `json:"type"`
	Required  bool     `json:"required,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Options   []string `json:"options,omitempty"`
}

func (p QuestionPayload) toModel() models.ApplicationQuestion {
	return models.ApplicationQuestion{
		ID:        p.ID,
		Prompt:    p.Question,
		Type:      models.QuestionType(p.Type),
		Required:  p.Required,
		MaxLength: p.MaxLength,
		Options:   p.Options,
	}
}

// CreateCampaignRequest is the payload for POST /clubs/{clubID}/campaigns.
type CreateCampaignRequest struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Requirements    []string          `json:"requirements,omitempty"`
	Questions       []QuestionPayload `json:"application_questions,omitempty"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         time.Time         `json:"end_date"`
	MaxApplications int               `json:"max_applications,omitempty"`
}

func (r CreateCampaignRequest) toInput() service.CreateCampaignInput {
	return service.CreateCampaignInput{
		Title:           r.Title,
		Description:     r.Description,
		Requirements:    r.Requirements,
		Questions:       toQuestionModels(r.Questions),
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		MaxApplications: r.MaxApplications,
	}
}

// UpdateCampaignRequest is the payload for PATCH /campaigns/{campaignID}.
// Absent fields are left untouched.
type UpdateCampaignRequest struct {
	Title           *string            `json:"title,omitempty"`
	Description     *string            `json:"description,omitempty"`
	Requirements    *[]string          `json:"requirements,omitempty"`
	Questions       *[]QuestionPayload `json:"application_questions,omitempty"`
	StartDate       *time.Time         `json:"start_date,omitempty"`
	EndDate         *time.Time         `json:"end_date,omitempty"`
	MaxApplications *int               `json:"max_applications,omitempty"`
}

func (r UpdateCampaignRequest) toUpdate() models.CampaignUpdate {
	update := models.CampaignUpdate{
		Title:           r.Title,
		Description:     r.Description,
		Requirements:    r.Requirements,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		MaxApplications: r.MaxApplications,
	}
	if r.Questions != nil {
		qs := toQuestionModels(*r.Questions)
		update.Questions = &qs
	}
	return update
}

// ChangeStatusRequest is the payload for POST /campaigns/{campaignID}/status.
type ChangeStatusRequest struct {
	Action string `json:"action"`
}

func toQuestionModels(payloads []QuestionPayload) []models.ApplicationQuestion {
	if payloads == nil {
		return nil
	}
	out := make([]models.ApplicationQuestion, len(payloads))
	for i, p := range payloads {
		out[i] = p.toModel()
	}
	return out
}
