// Package checkpoint provides core.Checkpointer implementations for
// persisting conversation threads keyed by thread id. The in-memory store is
// the default for tests and ephemeral use; a durable SQLite-backed store
// lives in the sqlite subpackage.
package checkpoint
