// Package memory provides an in-process session store for single-node
// deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

type sessionStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() ports.SessionStore {
	return &sessionStore{values: make(map[string]string)}
}

func (s *sessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *sessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
