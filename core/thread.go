package core

import (
	"sync"
	"time"
)

// Thread is a conversational container identified by an opaque thread id.
// It tracks the ordered message history plus a mutable key/value state bag
// and is safe for concurrent access.
//
// Contract:
//   - Messages are append-only; mutations update the Updated timestamp
//   - Reads return defensive copies so callers cannot mutate internals
//   - History filters to conversational roles (user, assistant, tool)
//   - Clone performs deep copies for safe divergence
type Thread struct {
	ID       string            `json:"id"`
	Messages []Message         `json:"messages"`
	State    map[string]any    `json:"state"`
	Metadata map[string]string `json:"metadata"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	mu       sync.RWMutex
}

// NewThread creates an empty thread with the given id.
func NewThread(id string) *Thread {
	now := time.Now().UTC()
	return &Thread{
		ID:       id,
		Messages: []Message{},
		State:    map[string]any{},
		Metadata: map[string]string{},
		Created:  now,
		Updated:  now,
	}
}

// Append adds messages to the history.
func (t *Thread) Append(msgs ...Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, msgs...)
	t.Updated = time.Now().UTC()
}

// GetMessages returns a defensive copy of the full message history.
func (t *Thread) GetMessages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := make([]Message, len(t.Messages))
	for i, m := range t.Messages {
		msgs[i] = m.Clone()
	}
	return msgs
}

// Len returns the number of messages in the history.
func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Messages)
}

// History returns the conversational context for a model call: user,
// assistant and tool messages in order. System messages are excluded; the
// agent supplies instructions separately per call.
func (t *Thread) History() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant, RoleTool:
			res = append(res, m.Clone())
		}
	}
	return res
}

// GetState returns the value and existence flag for a state key.
func (t *Thread) GetState(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.State[key]
	return v, ok
}

// SetState sets a state key, updating the Updated timestamp.
func (t *Thread) SetState(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State[key] = value
	t.Updated = time.Now().UTC()
}

// ApplyStateDelta merges key/value pairs into the state bag.
func (t *Thread) ApplyStateDelta(delta map[string]any) {
	if len(delta) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range delta {
		t.State[k] = v
	}
	t.Updated = time.Now().UTC()
}

// StateSnapshot returns a shallow copy of the state bag.
func (t *Thread) StateSnapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := make(map[string]any, len(t.State))
	for k, v := range t.State {
		snap[k] = v
	}
	return snap
}

// Clone returns a deep copy of the thread safe for independent mutation.
func (t *Thread) Clone() *Thread {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := &Thread{
		ID:       t.ID,
		Messages: make([]Message, len(t.Messages)),
		State:    make(map[string]any, len(t.State)),
		Metadata: make(map[string]string, len(t.Metadata)),
		Created:  t.Created,
		Updated:  t.Updated,
	}
	for i, m := range t.Messages {
		c.Messages[i] = m.Clone()
	}
	for k, v := range t.State {
		c.State[k] = v
	}
	for k, v := range t.Metadata {
		c.Metadata[k] = v
	}
	return c
}
