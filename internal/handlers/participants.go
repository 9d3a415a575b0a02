package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FerryF19999/chatinterface/internal/models"
	"github.com/FerryF19999/chatinterface/internal/probe"
)

// SetStatusRequest represents the status update request. Omitted fields are
// left unchanged; an explicit empty task clears it.
type SetStatusRequest struct {
	Status *string `json:"status,omitempty"`
	Task   *string `json:"task,omitempty"`
}

// Snapshot handles the full-state fetch used by polling clients and by
// push clients on (re)connect.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	snap.Participants = h.overlay(r.Context(), snap.Participants)
	h.JSON(w, http.StatusOK, snap)
}

// ListParticipants handles the participant listing.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants := h.overlay(r.Context(), h.store.Participants())
	h.JSON(w, http.StatusOK, participants)
}

// GetParticipant handles a single participant lookup.
func (h *Handler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Participant(chi.URLParam(r, "id"))
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, p)
}

// Login handles a participant login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.RecordLogin(chi.URLParam(r, "id"))
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, p)
}

// Logout handles a participant logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.RecordLogout(chi.URLParam(r, "id"))
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, p)
}

// SetStatus handles a participant status/task update.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var status models.Status
	if req.Status != nil {
		status = models.Status(*req.Status)
		if !status.Valid() {
			h.Error(w, http.StatusBadRequest, "status must be online, offline, busy or away")
			return
		}
	}

	p, err := h.store.SetStatus(chi.URLParam(r, "id"), status, req.Task)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, p)
}

// overlay applies the health probe to a participant listing. Best-effort:
// probe errors are logged and the stored statuses pass through.
func (h *Handler) overlay(ctx context.Context, participants []models.Participant) []models.Participant {
	if h.prober == nil {
		return participants
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	health, err := h.prober.Probe(ctx)
	if err != nil {
		h.logger.Debug().Err(err).Msg("health probe failed, skipping overlay")
		return participants
	}
	return probe.Overlay(participants, health)
}
