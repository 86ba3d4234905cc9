package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEventStream relays feed changes as server-sent events:
//
//	event: updated
//	data: {"kind":"updated","task":{...}}
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeError(w, http.StatusNotImplemented, "change feed not enabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.feed.Subscribe()
	defer s.feed.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(c)
			if err != nil {
				s.log.Warn("sse marshal", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Kind, b)
			flusher.Flush()
		}
	}
}
