package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/FerryF19999/chatinterface/internal/broadcast"
)

// keepaliveInterval is how often an SSE comment is written to hold idle
// connections open through proxies.
const keepaliveInterval = 30 * time.Second

// Events handles the push-channel event stream. Each observer receives an
// init event carrying the full snapshot first, then every subsequent event
// in emission order. Events emitted while disconnected are lost; observers
// re-sync via init on reconnect.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		h.Error(w, http.StatusServiceUnavailable, "push channel disabled, use the relay or polling")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Subscribe before snapshotting so no event between the two is missed;
	// the client reconciler dedupes any overlap by id.
	session := h.hub.Subscribe()
	defer session.Close()

	if err := writeEvent(w, broadcast.Event{Name: broadcast.EventInit, Data: h.store.Snapshot()}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e, open := <-session.C:
			if !open {
				// Dropped by the hub for falling behind.
				return
			}
			if err := writeEvent(w, e); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e broadcast.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data)
	return err
}
