package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StateURI is the resource exposing the current snapshot.
const StateURI = "scramble://state"

// Scrambler defines the operations the MCP server needs.
type Scrambler interface {
	SetText(ctx context.Context, text string) (*domain.Completion, error)
	NextName(ctx context.Context) (int, error)
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// SetTextResult is the structured output of the set_text tool.
type SetTextResult struct {
	Text       string `json:"text" jsonschema_description:"The requested target text"`
	Settled    bool   `json:"settled" jsonschema_description:"True when the call waited and the transition finished"`
	Superseded bool   `json:"superseded" jsonschema_description:"True when another transition replaced this one while waiting"`
}

// NextNameResult is the structured output of the next_name tool.
type NextNameResult struct {
	Index int    `json:"index" jsonschema_description:"Index of the entry now being revealed"`
	Name  string `json:"name" jsonschema_description:"The entry now being revealed"`
}

// Server wraps a Scrambler and exposes it as an MCP Server.
type Server struct {
	scrambler Scrambler
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(scrambler Scrambler, opts ...Option) *Server {
	s := &Server{
		scrambler: scrambler,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("scramble-mcp", strings.TrimSpace(scramble.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	setText := mcp.NewTool("set_text",
		mcp.WithDescription("Scramble the displayed text into a new string."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Target text")),
		mcp.WithBoolean("wait", mcp.Description("Wait for the reveal to finish before returning")),
		mcp.WithOutputSchema[SetTextResult](),
	)
	s.mcpServer.AddTool(setText, mcp.NewStructuredToolHandler(s.handleSetText))

	next := mcp.NewTool("next_name",
		mcp.WithDescription("Advance to the next configured name and reveal it."),
		mcp.WithOutputSchema[NextNameResult](),
	)
	s.mcpServer.AddTool(next, mcp.NewStructuredToolHandler(s.handleNextName))

	s.mcpServer.AddTool(mcp.NewTool("current_text",
		mcp.WithDescription("Get the displayed text and sequence position."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := s.scrambler.Snapshot(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(snap)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

type setTextArgs struct {
	Text string `json:"text"`
	Wait bool   `json:"wait"`
}

func (s *Server) handleSetText(ctx context.Context, request mcp.CallToolRequest, args setTextArgs) (SetTextResult, error) {
	text, err := domain.SanitizeText(args.Text)
	if err != nil {
		return SetTextResult{}, fmt.Errorf("set_text rejected: %w", err)
	}
	completion, err := s.scrambler.SetText(ctx, text)
	if err != nil {
		return SetTextResult{}, fmt.Errorf("set_text failed: %w", err)
	}
	res := SetTextResult{Text: text}
	if !args.Wait {
		return res, nil
	}

	err = completion.Wait(ctx)
	switch {
	case err == nil:
		res.Settled = true
	case errors.Is(err, domain.ErrSuperseded):
		res.Superseded = true
	default:
		return SetTextResult{}, err
	}
	s.logger.Debug("mcp set_text finished", "settled", res.Settled)
	return res, nil
}

func (s *Server) handleNextName(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (NextNameResult, error) {
	idx, err := s.scrambler.NextName(ctx)
	if err != nil {
		return NextNameResult{}, fmt.Errorf("next_name failed: %w", err)
	}
	res := NextNameResult{Index: idx}
	if snap, err := s.scrambler.Snapshot(ctx); err == nil && idx < len(snap.Names) {
		res.Name = snap.Names[idx]
	}
	return res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StateURI, "Scramble State",
		mcp.WithResourceDescription("Displayed text, animation flag and sequence position"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := s.scrambler.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read state: %w", err)
		}
		jsonBytes, _ := json.Marshal(snap)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StateURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
