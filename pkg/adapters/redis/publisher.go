package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Publisher is a FrameSink that PUBLISHes every frame as JSON on a channel.
// Render never blocks the scheduler: frames go through a bounded queue and
// are dropped when the worker falls behind.
type Publisher struct {
	client  *backend.Client
	channel string
	logger  *slog.Logger

	queue   chan domain.Frame
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	dropped int
}

var _ ports.FrameSink = (*Publisher)(nil)

type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger used for publish failures.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithQueueSize bounds the number of frames waiting to be published.
func WithQueueSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan domain.Frame, n)
		}
	}
}

// NewPublisher starts the publishing worker. Close stops it.
func NewPublisher(client *backend.Client, channel string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:  client,
		channel: channel,
		logger:  logging.NewNop(),
		queue:   make(chan domain.Frame, 64),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer p.wg.Done()
	ctx := context.Background()
	for frame := range p.queue {
		data, err := json.Marshal(frame)
		if err != nil {
			p.logger.Error("failed to encode frame", "error", err)
			continue
		}
		if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
			p.logger.Warn("failed to publish frame", "channel", p.channel, "error", err)
		}
	}
}

// Render implements ports.FrameSink.
func (p *Publisher) Render(frame domain.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- frame:
	default:
		p.dropped++
	}
}

// Dropped returns how many frames were discarded because the queue was full.
func (p *Publisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close flushes queued frames and stops the worker.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}
