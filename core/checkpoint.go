package core

import "errors"

// ErrThreadNotFound is returned by checkpointers when a thread id is unknown
// and the operation does not create threads lazily.
var ErrThreadNotFound = errors.New("thread not found")

// Checkpointer persists threads and their evolving message history / state,
// keyed by thread id. Implementations must be safe for concurrent use and
// must not hand out references to internal thread instances.
type Checkpointer interface {
	// Create forces the creation (or reset) of a thread with the given id.
	Create(threadID string) (*Thread, error)

	// Get returns the thread for the id, creating it lazily when absent.
	Get(threadID string) (*Thread, error)

	// Append adds messages to the thread's history.
	Append(threadID string, msgs ...Message) error

	// ApplyStateDelta merges a key/value delta into the thread state.
	ApplyStateDelta(threadID string, delta map[string]any) error

	// Delete removes the thread and its history.
	Delete(threadID string) error
}
