package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/config"
	"github.com/aretw0/scramble/internal/presentation/tui"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/observability"
)

// RunOptions controls the plain terminal host.
type RunOptions struct {
	Output io.Writer
	Logger *slog.Logger
	// Text, when set, reveals this text once and exits.
	Text string
	// Once exits after the automatic cycle returns to the first name.
	Once bool
	// Interactive redraws one line in place instead of printing settled texts.
	Interactive bool
}

// Run drives a Scrambler on the terminal until ctx ends or the requested
// reveal finishes.
func Run(ctx context.Context, cfg config.Config, opts RunOptions) error {
	writer := tui.NewLineWriter(opts.Output, tui.WithInteractive(opts.Interactive))
	defer writer.Finish()

	finished := make(chan struct{})
	var finish sync.Once
	done := func() { finish.Do(func() { close(finished) }) }

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	hooks := observability.LoggingHooks(opts.Logger)
	if opts.Once {
		hooks = hooks.Merge(onceHooks(done))
	}

	s, err := scramble.New(appendIf(cfg.Options(),
		scramble.WithMarkup(NewMarkup(cfg, opts.Output)),
		scramble.WithFrameSink(writer),
		scramble.WithLifecycleHooks(hooks),
		scramble.WithLogger(opts.Logger),
		store.Option(),
	)...)
	if err != nil {
		return err
	}

	if err := s.Start(ctx); err != nil {
		return handleExecutionError(err)
	}
	defer s.Stop()

	if opts.Text != "" {
		text, err := domain.SanitizeText(opts.Text)
		if err != nil {
			return err
		}
		c, err := s.SetText(ctx, text)
		if err != nil {
			return handleExecutionError(err)
		}
		go func() {
			// A superseded reveal ends the run as well.
			_ = c.Wait(ctx)
			done()
		}()
	} else if opts.Once && len(cfg.Names) < 2 {
		done()
	}

	select {
	case <-ctx.Done():
		return nil
	case <-finished:
		return nil
	case <-s.Done():
		return fmt.Errorf("scrambler stopped unexpectedly: %w", domain.ErrNotRunning)
	}
}

// onceHooks calls done when the transition started by a wrap settles.
func onceHooks(done func()) domain.LifecycleHooks {
	wrapped := false
	return domain.LifecycleHooks{
		OnAdvance: func(e *domain.AdvanceEvent) {
			wrapped = e.Wrap
		},
		OnTransitionSettle: func(*domain.TransitionEvent) {
			if wrapped {
				done()
			}
		},
	}
}
