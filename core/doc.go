// Package core provides the foundational domain types used throughout
// agentloop. It defines:
//
//   - Messages (user, assistant, tool and system records with tool-call
//     requests and correlation ids)
//   - Threads (stateful conversational containers with ordered history)
//   - Checkpointer (pluggable persistence for threads keyed by thread id)
//   - ToolContext (scoped execution environment handed to tools)
//
// The package intentionally keeps implementation concerns (model providers,
// concrete checkpointers, the agent loop) out of scope, exposing small
// interfaces so custom backends can be plugged in.
package core
