// Package handler exposes application intake and review over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubhub/internal/application/models"
	"clubhub/internal/application/service"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/httputil"
	"clubhub/pkg/requestcontext"
)

// Service defines the application operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, campaignID id.CampaignID, message string, answers map[string]models.Answer) (*models.Application, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Update(ctx context.Context, appID id.ApplicationID, message string, answers map[string]models.Answer) (*models.Application, error)
	Withdraw(ctx context.Context, appID id.ApplicationID) error
	Approve(ctx context.Context, appID id.ApplicationID, input service.ApprovalInput) (*models.Application, error)
	Reject(ctx context.Context, appID id.ApplicationID, input service.RejectionInput) (*models.Application, error)
	ListByCampaign(ctx context.Context, campaignID id.CampaignID, status models.ApplicationStatus, limit, offset int) ([]*models.Application, int, error)
	ListMine(ctx context.Context, status models.ApplicationStatus) ([]*models.Application, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an application handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts application endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/campaigns/{campaignID}/applications", h.HandleSubmit)
	r.Get("/campaigns/{campaignID}/applications", h.HandleListByCampaign)
	r.Get("/applications", h.HandleListMine)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Patch("/applications/{applicationID}", h.HandleUpdate)
	r.Delete("/applications/{applicationID}", h.HandleWithdraw)
	r.Post("/applications/{applicationID}/approve", h.HandleApprove)
	r.Post("/applications/{applicationID}/reject", h.HandleReject)
}

// HandleSubmit handles POST /campaigns/{campaignID}/applications.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Submit(ctx, campaignID, req.Message, req.Answers)
	if err != nil {
		h.logger.WarnContext(ctx, "submission rejected",
			"request_id", requestID, "campaign_id", campaignID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(app))
}

// HandleGet handles GET /applications/{applicationID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Get(r.Context(), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

// HandleUpdate handles PATCH /applications/{applicationID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Update(ctx, appID, req.Message, req.Answers)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

// HandleWithdraw handles DELETE /applications/{applicationID}.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Withdraw(r.Context(), appID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApprove handles POST /applications/{applicationID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Approve(ctx, appID, service.ApprovalInput{Role: req.Role, Notes: req.Notes})
	if err != nil {
		h.logger.WarnContext(ctx, "approval failed",
			"request_id", requestID, "application_id", appID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

// HandleReject handles POST /applications/{applicationID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Reject(ctx, appID, service.RejectionInput{Reason: req.Reason, Notes: req.Notes})
	if err != nil {
		h.logger.WarnContext(ctx, "rejection failed",
			"request_id", requestID, "application_id", appID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

// HandleListByCampaign handles GET /campaigns/{campaignID}/applications.
func (h *Handler) HandleListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
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

	list, total, err := h.service.ListByCampaign(r.Context(), campaignID, status, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Applications: toResponses(list), Total: total, Limit: limit, Offset: offset,
	})
}

// HandleListMine handles GET /applications.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListMine(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Applications: toResponses(list), Total: len(list),
	})
}

func statusFilter(r *http.Request) (models.ApplicationStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", nil
	}
	status, err := models.ParseApplicationStatus(raw)
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
