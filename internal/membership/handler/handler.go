// Package handler exposes club membership rosters over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clubhub/internal/membership/models"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/httputil"
	"clubhub/pkg/requestcontext"
)

// Service defines the membership reads the handler depends on.
type Service interface {
	RoleOf(ctx context.Context, clubID id.ClubID, userID id.UserID) (models.Role, bool)
	ListMembers(ctx context.Context, clubID id.ClubID) ([]*models.Membership, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts membership endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/clubs/{clubID}/members", h.HandleListMembers)
}

// RosterResponse lists a club's members.
type RosterResponse struct {
	Members []*models.Membership `json:"members"`
	Total   int                  `json:"total"`
}

// HandleListMembers handles GET /clubs/{clubID}/members. The roster is
// visible to the club's own members.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clubID, err := id.ParseClubID(chi.URLParam(r, "clubID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if _, ok := h.service.RoleOf(ctx, clubID, actor); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "forbidden"))
		return
	}

	members, err := h.service.ListMembers(ctx, clubID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RosterResponse{Members: members, Total: len(members)})
}
