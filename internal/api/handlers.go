package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/arczen/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Preview handles GET /api/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	spaces, skipped, err := h.svc.Preview(r.Context())
	if err != nil {
		writeError(w, "preview failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Spaces: spaces, Skipped: skipped})
}

// Plan handles GET /api/plan.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.Plan(r.Context())
	if err != nil {
		writeError(w, "plan failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Plan: plan})
}

// Workspaces handles GET /api/workspaces.
func (h *Handler) Workspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.svc.Workspaces(r.Context())
	if err != nil {
		writeError(w, "list workspaces failed", err)
		return
	}
	writeJSON(w, http.StatusOK, WorkspacesResponse{Workspaces: workspaces})
}

// Consolidate handles POST /api/consolidate.
func (h *Handler) Consolidate(w http.ResponseWriter, r *http.Request) {
	var req ConsolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if len(req.Workspaces) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("workspaces mapping is required"))
		return
	}
	result, err := h.svc.Consolidate(r.Context(), req.Workspaces)
	if err != nil {
		writeError(w, "consolidation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ConsolidateResponse{Result: result})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrMalformedDocument):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrStoreLocked), errors.Is(err, apperr.ErrConsolidation):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
