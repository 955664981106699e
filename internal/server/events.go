package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cribscore/internal/broadcast"
)

const pingInterval = 30 * time.Second

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	msgChan := s.Broadcaster.Subscribe()
	defer s.Broadcaster.Unsubscribe(msgChan)

	// The first event carries the current state so a fresh scoreboard can render.
	data, err := json.Marshal(map[string]any{"state": s.Session.State()})
	if err != nil {
		s.Logger.WithError(err).Error("marshal initial state")
		return
	}
	writeEvent(w, broadcast.Message{Event: broadcast.EventState, Data: string(data)})
	flusher.Flush()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			writeEvent(w, msg)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, msg broadcast.Message) {
	fmt.Fprintf(w, "event: %s\n", msg.Event)
	for _, line := range strings.Split(msg.Data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
