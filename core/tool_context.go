package core

import (
	"context"

	"github.com/movoss/agentloop/logging"
)

// ToolContext provides a constrained, auditable surface for tool
// implementations invoked by an agent. Tools read thread state through it and
// record mutations as a delta that the agent applies (and persists) after the
// call completes, rather than mutating the thread directly.
type ToolContext struct {
	ctx          context.Context
	threadID     string
	invocationID string
	toolCallID   string
	agentName    string
	state        map[string]any
	stateDelta   map[string]any
	logger       logging.Logger
}

// NewToolContext constructs a tool context bound to one tool call. The state
// map is a snapshot of the thread state at invocation time.
func NewToolContext(
	ctx context.Context,
	threadID, invocationID, toolCallID, agentName string,
	state map[string]any,
	logger logging.Logger,
) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if state == nil {
		state = map[string]any{}
	}
	return &ToolContext{
		ctx:          ctx,
		threadID:     threadID,
		invocationID: invocationID,
		toolCallID:   toolCallID,
		agentName:    agentName,
		state:        state,
		logger:       logger,
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// ThreadID returns the thread the tool call belongs to.
func (tc *ToolContext) ThreadID() string { return tc.threadID }

// InvocationID returns the invocation the tool call belongs to.
func (tc *ToolContext) InvocationID() string { return tc.invocationID }

// ToolCallID returns the correlation id of this tool call.
func (tc *ToolContext) ToolCallID() string { return tc.toolCallID }

// AgentName returns the name of the invoking agent.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// Logger returns the logger bound to the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// GetState retrieves a thread state value. Local mutations made through
// SetState during this call are visible immediately.
func (tc *ToolContext) GetState(k string) (any, bool) {
	if tc.stateDelta != nil {
		if v, ok := tc.stateDelta[k]; ok {
			return v, true
		}
	}
	v, ok := tc.state[k]
	return v, ok
}

// SetState records a state mutation in the local delta.
func (tc *ToolContext) SetState(k string, v any) {
	if tc.stateDelta == nil {
		tc.stateDelta = map[string]any{}
	}
	tc.stateDelta[k] = v
}

// StateDelta returns the mutations accumulated during the tool call, or nil
// when the tool made none.
func (tc *ToolContext) StateDelta() map[string]any { return tc.stateDelta }
