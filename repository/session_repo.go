package repository

import (
	"context"
	"sync"

	"github.com/tieubaoca/arxchive-be/types"
)

// SessionStore holds per-user conversation state. Get returns a fresh
// empty state for unknown IDs so callers never see a nil state.
type SessionStore interface {
	Get(ctx context.Context, id string) (*types.ConversationState, error)
	Save(ctx context.Context, id string, state *types.ConversationState) error
	Delete(ctx context.Context, id string) error
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*types.ConversationState
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*types.ConversationState),
	}
}

func (s *memorySessionStore) Get(ctx context.Context, id string) (*types.ConversationState, error) {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return types.NewConversationState(), nil
	}
	return state, nil
}

func (s *memorySessionStore) Save(ctx context.Context, id string, state *types.ConversationState) error {
	s.mu.Lock()
	s.sessions[id] = state
	s.mu.Unlock()
	return nil
}

func (s *memorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
