package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/internal/presentation/graph"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Scrambler defines the operations exposed over HTTP.
type Scrambler interface {
	SetText(ctx context.Context, text string) (*domain.Completion, error)
	// SetTextAndWait returns the snapshot taken as the transition settles.
	SetTextAndWait(ctx context.Context, text string) (domain.Snapshot, error)
	NextName(ctx context.Context) (int, error)
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Server serves the control API and the frame event stream.
type Server struct {
	Scrambler Scrambler
	Streams   *StreamManager
	Logger    *slog.Logger
	metrics   http.Handler
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithStreams shares a StreamManager that is also registered as a frame sink.
func WithStreams(sm *StreamManager) HandlerOption {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// SetTextRequest is the body of POST /text.
type SetTextRequest struct {
	Text string `json:"text"`
	// Wait blocks the response until the transition settles.
	Wait bool `json:"wait,omitempty"`
}

// NextResponse is the body returned by POST /next.
type NextResponse struct {
	Index int `json:"index"`
}

// NewHandler creates a new HTTP handler for the scrambler.
func NewHandler(scrambler Scrambler, opts ...HandlerOption) http.Handler {
	server := &Server{
		Scrambler: scrambler,
		Logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.Logger)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/text", server.GetText)
	r.Post("/text", server.SetText)
	r.Post("/next", server.NextName)
	r.Get("/graph", server.GetGraph)
	r.Get("/events", server.SubscribeEvents)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "scramble-http",
		"version": strings.TrimSpace(scramble.Version),
	})
}

// GetText handles the GET /text request.
func (s *Server) GetText(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Scrambler.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "Snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SetText handles the POST /text request.
func (s *Server) SetText(w http.ResponseWriter, r *http.Request) {
	var body SetTextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SetText: Invalid request body", "error", err)
		return
	}
	text, err := domain.SanitizeText(body.Text)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid text: %v", err), http.StatusBadRequest)
		return
	}

	if body.Wait {
		snap, err := s.Scrambler.SetTextAndWait(r.Context(), text)
		if err != nil {
			s.fail(w, "SetText", err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
		return
	}

	if _, err := s.Scrambler.SetText(r.Context(), text); err != nil {
		s.fail(w, "SetText", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// GetGraph handles the GET /graph request with a Mermaid flowchart of the
// cycle, highlighting the displayed name.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Scrambler.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	overlay := &graph.GraphOverlay{Current: snap.Index, Animating: snap.Animating}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(snap.Names, graph.Timing{}, overlay)))
}

// NextName handles the POST /next request.
func (s *Server) NextName(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Scrambler.NextName(r.Context())
	if err != nil {
		s.fail(w, "NextName", err)
		return
	}
	writeJSON(w, http.StatusOK, NextResponse{Index: idx})
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional topic query selects "frames" (default) or "settled".
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicFrames
	}
	if topic != TopicFrames && topic != TopicSettled {
		http.Error(w, fmt.Sprintf("Unknown topic %q", topic), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()
	s.Logger.Info("SSE: Subscribing to frames", "topic", topic)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", topic, msg)
			flusher.Flush()
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotRunning):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
