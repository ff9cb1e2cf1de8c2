// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer LoopLogger with contextual
// helpers (component, thread, invocation) and domain specific helpers for
// model and tool calls.
package logging
