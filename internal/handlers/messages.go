package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FerryF19999/chatinterface/internal/models"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200

	maxContentBytes = 4096
)

// SendMessageRequest represents the message send request.
type SendMessageRequest struct {
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

// MessagesResponse represents the message listing response.
type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}

// ListMessages handles fetching the recent message tail, optionally
// filtered to one participant's view.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultMessageLimit, maxMessageLimit)
	participant := r.URL.Query().Get("participant")

	h.JSON(w, http.StatusOK, MessagesResponse{
		Messages: h.store.Messages(limit, participant),
	})
}

// SendMessage handles posting a new message.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Content) > maxContentBytes {
		h.Error(w, http.StatusUnprocessableEntity, "content too long (max 4096 bytes)")
		return
	}

	kind := models.MessageKind(req.Kind)
	if req.Kind != "" && !kind.Valid() {
		h.Error(w, http.StatusBadRequest, "unknown message kind")
		return
	}

	msg, err := h.store.PostMessage(req.From, req.To, req.Content, kind)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusCreated, msg)
}

// MarkRead handles flagging a message as read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.store.MarkRead(chi.URLParam(r, "id"))
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, msg)
}

// parseLimit clamps a limit query parameter into (0, max].
func parseLimit(raw string, def, max int) int {
	limit := def
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}
