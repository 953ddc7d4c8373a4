package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes a channel to remote clients.
type Server struct {
	Channel ports.Channel
	Streams *StreamManager
	Timeout time.Duration
	hooks   domain.Hooks
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTimeout bounds each invocation. Zero leaves only the request context.
func WithTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.Timeout = d
	}
}

// WithHooks observes every invocation served.
func WithHooks(hooks domain.Hooks) ServerOption {
	return func(s *Server) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// NewHandler creates the HTTP handler that serves ch.
func NewHandler(ch ports.Channel, opts ...ServerOption) http.Handler {
	server := &Server{
		Channel: ch,
		Streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server.Routes()
}

// Routes mounts the server endpoints on a new router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/invoke", s.Invoke)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Get("/swagger", s.GetSwagger)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Invoke handles the POST /invoke request.
func (s *Server) Invoke(w http.ResponseWriter, r *http.Request) {
	var body InvokeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, InvokeResponse{Error: "invalid request body"})
		s.logger.Warn("Invoke: Invalid request body", "err", err)
		return
	}
	if body.Identifier == "" {
		body.Identifier = ports.EntryPoint
	}

	ctx := r.Context()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	event := &domain.DispatchEvent{
		Timestamp:  time.Now(),
		Identifier: body.Identifier,
		Script:     scriptOf(body),
		Mode:       domain.ModeAsync,
	}
	if s.hooks.OnDispatch != nil {
		s.hooks.OnDispatch(ctx, event)
	}

	result, err := s.Channel.InvokeAsync(ctx, body.Identifier, body.Args...)

	event.Duration = time.Since(event.Timestamp)
	event.Err = err
	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete(ctx, event)
	}
	s.broadcast(event)

	if err != nil {
		status := statusFor(err)
		writeJSON(w, status, InvokeResponse{Error: err.Error()})
		s.logger.Debug("Invoke failed", "identifier", body.Identifier, "status", status, "err", err)
		return
	}
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: result})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEntryPointNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

func scriptOf(req InvokeRequest) string {
	if len(req.Args) == 0 {
		return ""
	}
	script, _ := req.Args[0].(string)
	return script
}

func (s *Server) broadcast(e *domain.DispatchEvent) {
	event := Event{
		Identifier: e.Identifier,
		Script:     e.Script,
		DurationMs: float64(e.Duration.Microseconds()) / 1000,
	}
	if e.Err != nil {
		event.Error = e.Err.Error()
	}
	if data, err := json.Marshal(event); err == nil {
		s.Streams.Broadcast(string(data))
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	_, direct := s.Channel.(ports.DirectChannel)
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "jseval-http",
		"version":     strings.TrimSpace(jseval.Version),
		"entry_point": ports.EntryPoint,
		"direct":      direct,
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
