package checkpoint

import (
	"sync"

	"github.com/movoss/agentloop/core"
)

// InMemoryStore is a volatile Checkpointer storing threads in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo sessions. Each returned thread is cloned to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*core.Thread
}

var _ core.Checkpointer = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory checkpointer.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[string]*core.Thread)}
}

// Get returns an existing thread (clone) or creates a new one lazily.
func (s *InMemoryStore) Get(threadID string) (*core.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.threads[threadID]; ok {
		return t.Clone(), nil
	}
	return s.createLocked(threadID).Clone(), nil
}

// Create forces the creation (or reset) of a thread with the given id.
func (s *InMemoryStore) Create(threadID string) (*core.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(threadID).Clone(), nil
}

// Append adds messages to an existing or newly created thread.
func (s *InMemoryStore) Append(threadID string, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		t = s.createLocked(threadID)
	}
	t.Append(msgs...)
	return nil
}

// ApplyStateDelta merges a key/value delta into the thread state.
func (s *InMemoryStore) ApplyStateDelta(threadID string, delta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		t = s.createLocked(threadID)
	}
	t.ApplyStateDelta(delta)
	return nil
}

// Delete removes the thread and its history.
func (s *InMemoryStore) Delete(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}

// createLocked allocates and stores a new thread; caller must hold the write lock.
func (s *InMemoryStore) createLocked(threadID string) *core.Thread {
	t := core.NewThread(threadID)
	s.threads[threadID] = t
	return t
}
