package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kyrieos/intelligence-engine/internal/api/response"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// ActionLister reads the agent audit trail.
type ActionLister interface {
	ListAIActions(ctx context.Context, workspaceID string, limit int) ([]*models.AIAction, error)
}

// NewListActionsHandler returns an http.HandlerFunc for
// GET /ai/cfo/workspaces/{workspaceID}/actions.
func NewListActionsHandler(actions ActionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID := chi.URLParam(r, "workspaceID")
		limit, ok := parseLimit(w, r)
		if !ok {
			return
		}

		list, err := actions.ListAIActions(r.Context(), workspaceID, limit)
		if err != nil {
			slog.Error("failed to list ai actions", "workspace_id", workspaceID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list actions", nil)
			return
		}

		response.JSON(w, map[string]any{"actions": list})
	}
}
