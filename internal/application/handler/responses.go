package handler

import (
	"clubhub/internal/application/models"
)

// toResponse externalizes an application for the wire: the internal
// approving reservation reads as pending.
func toResponse(app *models.Application) *models.Application {
	out := *app
	out.Status = out.Status.External()
	return &out
}

func toResponses(apps []*models.Application) []*models.Application {
	out := make([]*models.Application, len(apps))
	for i, app := range apps {
		out[i] = toResponse(app)
	}
	return out
}

// ListResponse pages applications with the unfiltered total.
type ListResponse struct {
	Applications []*models.Application `json:"applications"`
	Total        int                   `json:"total"`
	Limit        int                   `json:"limit,omitempty"`
	Offset       int                   `json:"offset,omitempty"`
}
