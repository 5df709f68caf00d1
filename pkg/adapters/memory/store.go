package memory

import (
	"context"
	"sync"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// Store implements ports.TextStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

var _ ports.TextStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// SaveText stores the text in memory.
func (s *Store) SaveText(ctx context.Context, key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = text
	return nil
}

// LoadText retrieves the text from memory.
func (s *Store) LoadText(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.data[key]
	if !ok {
		return "", domain.ErrTextNotFound
	}
	return text, nil
}

// DeleteText removes the text from memory.
func (s *Store) DeleteText(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
