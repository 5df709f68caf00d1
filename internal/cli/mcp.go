package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/config"
	"github.com/aretw0/scramble/pkg/adapters/mcp"
	"github.com/aretw0/scramble/pkg/observability"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP exposes a Scrambler as MCP tools over the given transport.
func ServeMCP(ctx context.Context, cfg config.Config, logger *slog.Logger, transport, baseURL string) error {
	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := scramble.New(appendIf(cfg.Options(),
		scramble.WithMarkup(serverMarkup(cfg)),
		scramble.WithLifecycleHooks(observability.LoggingHooks(logger)),
		scramble.WithLogger(logger),
		store.Option(),
	)...)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	srv := mcp.NewServer(s, mcp.WithLogger(logger))
	switch transport {
	case TransportStdio:
		logger.Info("starting MCP server (stdio)")
		return handleExecutionError(srv.ServeStdio())
	case TransportSSE:
		return srv.ServeSSE(ctx, cfg.Server.Addr, baseURL)
	default:
		return fmt.Errorf("unknown transport %q, supported: %s, %s", transport, TransportStdio, TransportSSE)
	}
}
