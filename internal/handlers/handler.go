package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/broadcast"
	"github.com/FerryF19999/chatinterface/internal/dispatch"
	"github.com/FerryF19999/chatinterface/internal/probe"
	"github.com/FerryF19999/chatinterface/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	hub        *broadcast.Hub        // nil in relay mode
	relay      *broadcast.RedisRelay // nil in push mode
	prober     probe.Prober          // nil when the health overlay is disabled
	logger     zerolog.Logger
}

// NewHandler creates a Handler. hub and relay are mutually exclusive; the
// prober is optional.
func NewHandler(st *store.Store, d *dispatch.Dispatcher, hub *broadcast.Hub, relay *broadcast.RedisRelay, prober probe.Prober, logger zerolog.Logger) *Handler {
	return &Handler{
		store:      st,
		dispatcher: d,
		hub:        hub,
		relay:      relay,
		prober:     prober,
		logger:     logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// StoreError maps store errors onto HTTP status codes.
func (h *Handler) StoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidSender), errors.Is(err, store.ErrEmptyContent),
		errors.Is(err, store.ErrInvalidStatus):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrForbidden):
		h.Error(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}
