package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// Stream topics.
const (
	TopicFrames  = "frames"  // every rendered frame
	TopicSettled = "settled" // only frames whose slots all settled
)

// StreamManager handles active SSE connections.
// It is also a FrameSink, publishing every frame to its subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Topic -> Set of Channels
	logger      *slog.Logger
}

var _ ports.FrameSink = (*StreamManager)(nil)

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for topic. The returned function
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 64)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Subscribers returns the number of subscribers of topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

// Broadcast sends msg to every subscriber of topic without blocking.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// Render implements ports.FrameSink.
func (sm *StreamManager) Render(frame domain.Frame) {
	sm.mu.RLock()
	idle := len(sm.subscribers) == 0
	sm.mu.RUnlock()
	if idle {
		return
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		sm.logger.Error("failed to encode frame", "error", err)
		return
	}
	sm.Broadcast(TopicFrames, string(payload))
	if frame.Complete() {
		sm.Broadcast(TopicSettled, string(payload))
	}
}
