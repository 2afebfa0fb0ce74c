package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
)

const defaultReplay = 50

var keepaliveInterval = 30 * time.Second

// EventsSSE provides Server-Sent Events for realtime updates.
// ?runId= narrows the stream to one run and replays its recent history first;
// ?replay= overrides how many past events are sent.
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	runID := r.URL.Query().Get("runId")
	replay := 0
	if runID != "" {
		replay = defaultReplay
	}
	if v := r.URL.Query().Get("replay"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "replay must be a non-negative integer", http.StatusBadRequest)
			return
		}
		replay = n
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Subscribe before replaying so nothing published in between is lost
	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if replay > 0 {
		for _, event := range h.pubsub.Recent(runID, replay) {
			writeEvent(w, event)
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if runID != "" && event.RunID != runID {
				continue
			}
			writeEvent(w, event)
			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected", "run_id", runID)
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event pubsub.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("Failed to encode event", "error", err, "type", event.Type)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
}
