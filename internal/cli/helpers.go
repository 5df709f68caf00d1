package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/adapters/file"
	"github.com/aretw0/scramble/internal/adapters/sqlite"
	"github.com/aretw0/scramble/internal/config"
	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/internal/presentation/tui"
	"github.com/aretw0/scramble/pkg/adapters/redis"
	"github.com/aretw0/scramble/pkg/persistence/middleware"
	"github.com/aretw0/scramble/pkg/ports"
	"github.com/aretw0/scramble/pkg/render"
	"github.com/muesli/termenv"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger. It always writes to Stderr so
// animation output on Stdout stays clean.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	return logging.NewWithWriter(os.Stderr, logging.ParseLevel(cfg.Level), logging.Format(cfg.Format))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// NewMarkup picks the glyph decoration configured for a host writing to w.
func NewMarkup(cfg config.Config, w io.Writer) render.Markup {
	switch cfg.Markup {
	case config.MarkupHTML:
		return render.HTML{}
	case config.MarkupPlain:
		return render.Plain{}
	}
	return tui.NewMarkup(termenv.NewOutput(w).Profile, "")
}

// Store is an opened text store together with the key it persists under.
type Store struct {
	ports.TextStore
	Key   string
	redis *redis.Store
	close func() error
}

// Close releases the backend connection, if any.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Option returns the scramble option wiring the store, or nil.
func (s *Store) Option() scramble.Option {
	if s == nil {
		return nil
	}
	return scramble.WithTextStore(s.TextStore, s.Key)
}

// OpenStore selects the persistence backend: Redis when an address is
// configured, then SQLite, then the file store. It returns nil when none is.
// A configured state key seals every stored text.
func OpenStore(cfg config.Config) (*Store, error) {
	s, err := openBackend(cfg)
	if err != nil || s == nil || cfg.StateKey == "" {
		return s, err
	}
	key, err := middleware.ParseKey(cfg.StateKey)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.TextStore = middleware.Chain(s.TextStore, mw)
	return s, nil
}

func openBackend(cfg config.Config) (*Store, error) {
	switch {
	case cfg.Redis.Addr != "":
		rs := redis.New(cfg.Redis.Addr, "", cfg.Redis.DB, redis.WithPrefix(""))
		return &Store{TextStore: rs, Key: cfg.Redis.Key, redis: rs, close: rs.Close}, nil
	case cfg.Database != "":
		db, err := sqlite.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		return &Store{TextStore: db, Key: "current", close: db.Close}, nil
	case cfg.StateDir != "":
		return &Store{TextStore: file.New(cfg.StateDir), Key: "current"}, nil
	}
	return nil, nil
}

// appendIf skips nil options.
func appendIf(opts []scramble.Option, more ...scramble.Option) []scramble.Option {
	for _, o := range more {
		if o != nil {
			opts = append(opts, o)
		}
	}
	return opts
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError treats interruptions as a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
