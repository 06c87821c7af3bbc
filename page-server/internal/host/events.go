package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EventDocumentsChanged is pushed when the asset directory changed
const EventDocumentsChanged = "documents-changed"

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.log.Error("SSE not supported by response writer")
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan string, 10)

	s.sseMutex.Lock()
	s.sseClients[clientChan] = true
	clientCount := len(s.sseClients)
	s.sseMutex.Unlock()

	s.log.Debug("SSE client connected", "remote", r.RemoteAddr, "total_clients", clientCount)

	defer func() {
		s.sseMutex.Lock()
		delete(s.sseClients, clientChan)
		remaining := len(s.sseClients)
		s.sseMutex.Unlock()
		s.log.Debug("SSE client disconnected", "remote", r.RemoteAddr, "remaining_clients", remaining)
	}()

	fmt.Fprintf(w, "data: %s\n\n", `{"type":"connected"}`)
	flusher.Flush()

	for {
		select {
		case msg := <-clientChan:
			fmt.Fprint(w, msg)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// Broadcast sends a named event to every connected client. Clients whose
// buffer is full miss the event.
func (s *Server) Broadcast(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("Failed to encode event", "event", event, "error", err)
		return
	}
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)

	s.sseMutex.Lock()
	defer s.sseMutex.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- msg:
		default:
			// Client buffer full, skip
		}
	}
}

// Clients returns the number of connected event-stream clients
func (s *Server) Clients() int {
	s.sseMutex.Lock()
	defer s.sseMutex.Unlock()
	return len(s.sseClients)
}

// WatchChanges broadcasts EventDocumentsChanged with the fresh document list
// for every value received on changes, until ctx is done or changes closes.
func (s *Server) WatchChanges(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			entries := s.registry.List(ctx)
			s.log.Info("Asset directory changed", "documents", len(entries), "clients", s.Clients())
			s.Broadcast(EventDocumentsChanged, map[string]any{
				"documents": entries,
				"at":        time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
}
