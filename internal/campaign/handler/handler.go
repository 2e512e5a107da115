// Package handler exposes campaign management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubhub/internal/campaign/models"
	"clubhub/internal/campaign/service"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/httputil"
	"clubhub/pkg/requestcontext"
)

// Service defines the campaign operations the handler depends on.
type Service interface {
	Create(ctx context.Context, clubID id.ClubID, input service.CreateCampaignInput) (*models.Campaign, error)
	Get(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error)
	ListByClub(ctx context.Context, clubID id.ClubID, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, int, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Campaign, int, error)
	Update(ctx context.Context, campaignID id.CampaignID, update models.CampaignUpdate) (*models.Campaign, error)
	ChangeStatus(ctx context.Context, campaignID id.CampaignID, action models.StatusAction) (*models.Campaign, error)
	Delete(ctx context.Context, campaignID id.CampaignID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a campaign handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts campaign endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clubs/{clubID}/campaigns", h.HandleCreate)
	r.Get("/clubs/{clubID}/campaigns", h.HandleListByClub)
	r.Get("/campaigns", h.HandleListPublished)
	r.Get("/campaigns/{campaignID}", h.HandleGet)
	r.Patch("/campaigns/{campaignID}", h.HandleUpdate)
	r.Post("/campaigns/{campaignID}/status", h.HandleChangeStatus)
	r.Delete("/campaigns/{campaignID}", h.HandleDelete)
}

// HandleCreate handles POST /clubs/{clubID}/campaigns.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	clubID, err := id.ParseClubID(chi.URLParam(r, "clubID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateCampaignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Create(ctx, clubID, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "campaign creation rejected",
			"request_id", requestID, "club_id", clubID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CampaignResponse{c})
}

// HandleGet handles GET /campaigns/{campaignID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.Get(ctx, campaignID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CampaignResponse{c})
}

// HandleListByClub handles GET /clubs/{clubID}/campaigns.
func (h *Handler) HandleListByClub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clubID, err := id.ParseClubID(chi.URLParam(r, "clubID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := statusFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, offset := pagination(r)

	list, total, err := h.service.ListByClub(ctx, clubID, status, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Campaigns: list, Total: total, Limit: limit, Offset: offset})
}

// HandleListPublished handles GET /campaigns.
func (h *Handler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	list, total, err := h.service.ListPublished(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Campaigns: list, Total: total, Limit: limit, Offset: offset})
}

// HandleUpdate handles PATCH /campaigns/{campaignID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateCampaignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Update(ctx, campaignID, req.toUpdate())
	if err != nil {
		h.logger.WarnContext(ctx, "campaign update rejected",
			"request_id", requestID, "campaign_id", campaignID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CampaignResponse{c})
}

// HandleChangeStatus handles POST /campaigns/{campaignID}/status.
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ChangeStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	action, err := models.ParseStatusAction(req.Action)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.ChangeStatus(ctx, campaignID, action)
	if err != nil {
		h.logger.WarnContext(ctx, "status change rejected",
			"request_id", requestID, "campaign_id", campaignID, "action", req.Action, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CampaignResponse{c})
}

// HandleDelete handles DELETE /campaigns/{campaignID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, campaignID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFilter(r *http.Request) (models.CampaignStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", nil
	}
	status, err := models.ParseCampaignStatus(raw)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status filter")
	}
	return status, nil
}

func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	} else {
		limit = 20
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
