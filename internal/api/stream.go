package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/talgya/copclicker/internal/engine"
	"github.com/talgya/copclicker/internal/logger"
)

const (
	maxSSEConns       = 8
	sseCatchUp        = 50
	heartbeatInterval = 15 * time.Second
)

// handleStream provides an SSE endpoint for rank-ups, unlocks, purchases
// and the rest of the event log. Concurrent connections are capped.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// Connection limit.
	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		writeError(w, http.StatusServiceUnavailable, "too many SSE connections")
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// SSE headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Catch-up: recent events before the live feed.
	subID, ch, history := s.Game.SubscribeWithHistory(sseCatchUp)
	defer s.Game.Unsubscribe(subID)

	for _, e := range history {
		writeSSEEvent(w, e)
	}
	flusher.Flush()

	log := logger.FromContext(r.Context())
	log.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			log.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Seq, e.Category, data)
}
