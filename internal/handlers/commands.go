package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CommandRequest represents an agent command dispatch request.
type CommandRequest struct {
	Command  string `json:"command"`
	CallerID string `json:"caller_id"`
}

// CommandResponse acknowledges an accepted dispatch. Settlement is
// asynchronous and observed via fan-out, not via this response.
type CommandResponse struct {
	CommandMessageID string `json:"command_message_id"`
}

// DispatchCommand handles a command dispatch from any participant.
func (h *Handler) DispatchCommand(w http.ResponseWriter, r *http.Request) {
	h.dispatchCommand(w, r, false)
}

// DispatchOwnerCommand handles the owner-only dispatch variant.
func (h *Handler) DispatchOwnerCommand(w http.ResponseWriter, r *http.Request) {
	h.dispatchCommand(w, r, true)
}

func (h *Handler) dispatchCommand(w http.ResponseWriter, r *http.Request, ownerOnly bool) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	agentID := chi.URLParam(r, "id")

	var (
		msgID string
		err   error
	)
	if ownerOnly {
		msgID, err = h.dispatcher.DispatchOwner(r.Context(), agentID, req.Command, req.CallerID)
	} else {
		msgID, err = h.dispatcher.Dispatch(r.Context(), agentID, req.Command, req.CallerID)
	}
	if err != nil {
		h.StoreError(w, err)
		return
	}

	h.JSON(w, http.StatusAccepted, CommandResponse{CommandMessageID: msgID})
}
