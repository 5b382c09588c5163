package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"
)

const heartbeatInterval = 15 * time.Second

// handleEvents relaie le bus en Server-Sent Events. ?topic=a,b filtre les
// topics transmis.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	if s.bus == nil {
		http.Error(w, "events disabled", http.StatusNotImplemented)
		return
	}

	var topics map[string]bool
	if raw := strings.TrimSpace(r.URL.Query().Get("topic")); raw != "" {
		topics = map[string]bool{}
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics[t] = true
			}
		}
	}

	events, cancel := s.bus.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	fmt.Fprintf(w, "event: hello\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				hlog.FromRequest(r).Debug().Msg("event bus closed")
				return
			}
			if topics != nil && !topics[evt.Topic] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Topic, evt.Payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
