package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const heartbeatInterval = 25 * time.Second

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// StreamShowEvents sends the current layout, then every seat status change
// of the show until the client goes away.
func (h *Handler) StreamShowEvents(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showId")
	show, err := h.Locks.GetShow(r.Context(), showID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	ctx := r.Context()
	events := h.Events.Subscribe(ctx, showID)

	setupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	snapshot, err := json.Marshal(show.Seats)
	if err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize layout of %s: %v", showID, err))
		return
	}
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", snapshot)
	if err := rc.Flush(); err != nil {
		h.Logger.Warn("SSE", fmt.Sprintf("Streaming unsupported: %v", err))
		return
	}
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to show %s (%d watching)", showID, h.Events.ClientCount(showID)))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize seat event: %v", err))
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: seats\ndata: %s\n\n", event.EventID, data)
			if err := rc.Flush(); err != nil {
				return
			}
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from show %s", showID))
			return
		}
	}
}
