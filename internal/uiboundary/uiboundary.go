// Package uiboundary is a minimal live-tail boundary: a single SSE
// stream of freshly ingested messages. A real frontend is out of
// scope; this package only carries the collaborator contract, an HTTP
// server that multiplexes one broadcast channel to any number of SSE
// clients.
package uiboundary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Event is the JSON payload pushed to each SSE subscriber.
type Event struct {
	Hostname  string `json:"hostname"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Hub fans ingested events out to SSE clients.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Publish fans event out to every current subscriber. A subscriber
// whose buffer is full is skipped rather than blocking ingestion.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) subscribe() (chan Event, func()) {
	ch := make(chan Event, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Server is the HTTP server exposing the SSE stream and a health
// endpoint.
type Server struct {
	hub    *Hub
	router *chi.Mux
	server *http.Server
	logger *slog.Logger
}

// NewServer builds a Server bound to addr, reading events from hub.
func NewServer(addr string, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{hub: hub, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/events", s.handleEvents)
	s.router = r

	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("ui boundary server started", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleEvents streams Hub publications as Server-Sent Events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := s.hub.subscribe()
	defer unsubscribe()
	s.logger.Debug("new sse subscriber connected")

	ctx := r.Context()
	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event := <-ch:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
