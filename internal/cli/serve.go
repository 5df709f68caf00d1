package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/config"
	httpAdapter "github.com/aretw0/scramble/pkg/adapters/http"
	"github.com/aretw0/scramble/pkg/adapters/redis"
	"github.com/aretw0/scramble/pkg/observability"
	"github.com/aretw0/scramble/pkg/render"
)

// Serve exposes a Scrambler over HTTP until ctx ends. Frames are streamed
// to SSE subscribers and, when Redis is configured, published on its channel.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	streams := httpAdapter.NewStreamManager(logger)
	metrics := observability.NewMetrics()

	opts := appendIf(cfg.Options(),
		scramble.WithMarkup(serverMarkup(cfg)),
		scramble.WithFrameSink(streams),
		scramble.WithFrameSink(metrics),
		scramble.WithLifecycleHooks(metrics.Hooks()),
		scramble.WithLifecycleHooks(observability.LoggingHooks(logger)),
		scramble.WithLogger(logger),
	)

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	opts = appendIf(opts, store.Option())

	if rs, ok := storeRedis(store); ok {
		pub := redis.NewPublisher(rs.Client(), cfg.Redis.Channel, redis.WithPublisherLogger(logger))
		defer pub.Close()
		opts = append(opts, scramble.WithFrameSink(pub))
		logger.Info("publishing frames to redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	s, err := scramble.New(opts...)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpAdapter.NewHandler(s,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(metrics.Handler()),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	})
	return g.Wait()
}

// serverMarkup defaults to HTML, since terminal escapes make no sense to
// browser clients.
func serverMarkup(cfg config.Config) render.Markup {
	if cfg.Markup == config.MarkupPlain {
		return render.Plain{}
	}
	return render.HTML{}
}

func storeRedis(s *Store) (*redis.Store, bool) {
	if s == nil || s.redis == nil {
		return nil, false
	}
	return s.redis, true
}
