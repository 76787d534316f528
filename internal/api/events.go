package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/jedilnik/internal/events"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 25 * time.Second

// EventsHandler streams data-changed events as server-sent events.
type EventsHandler struct {
	DB     *sql.DB
	Events *events.Bus
}

// Stream handles GET /api/restaurants/{id}/events.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	rc := http.NewResponseController(w)
	// The server's write timeout would otherwise end the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	ch, cancel := h.Events.Channel(restaurant.ID, 16)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Error("event stream not supported", "error", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case e, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
