package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/events"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler streams cart change notifications to a session's open pages
// as server-sent events.
type EventsHandler struct {
	Broker    *events.Broker
	Heartbeat time.Duration
}

func (h *EventsHandler) Cart(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if !sess.Authenticated() || sess.ID == "" {
		// 204 tells EventSource not to reconnect.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ch, cancel := h.Broker.Subscribe(sess.ID)
	defer cancel()

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 5000\n\n")
	if err := rc.Flush(); err != nil {
		logger.Error(r.Context(), "Streaming not supported", err)
		return
	}

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
