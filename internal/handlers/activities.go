package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/FerryF19999/chatinterface/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 100
)

// RecordActivityRequest represents the direct activity write request, used
// by external instrumentation.
type RecordActivityRequest struct {
	ActorID     string            `json:"actor_id"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ActivitiesResponse represents the activity listing response, newest
// first.
type ActivitiesResponse struct {
	Activities []models.Activity `json:"activities"`
}

// ListActivities handles fetching the newest activities.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultActivityLimit, maxActivityLimit)
	h.JSON(w, http.StatusOK, ActivitiesResponse{
		Activities: h.store.Activities(limit),
	})
}

// RecordActivity handles the direct activity write path.
func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	var req RecordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	typ := models.ActivityType(req.Type)
	if !typ.Valid() {
		h.Error(w, http.StatusBadRequest, "unknown activity type")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		h.Error(w, http.StatusBadRequest, "description is required")
		return
	}

	a, err := h.store.RecordActivity(req.ActorID, typ, req.Description, req.Metadata)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusCreated, a)
}
