package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/movoss/agentloop/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// NewToolDefinition builds a function ToolDefinition.
func NewToolDefinition(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Request captures the normalized model input produced by the agent loop.
type Request struct {
	Instructions string           `json:"instructions"` // system prompt
	Messages     []core.Message   `json:"messages"`     // conversation history, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Response is the completed result of a chat call. Message carries either
// plain assistant text or tool-call requests; Usage is populated when the
// provider reports token accounting.
type Response struct {
	ID           string       `json:"id"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", ...
	Usage        *core.Usage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the agent loop requires to drive
// generation. Chat performs one synchronous request/response exchange.
type Model interface {
	Chat(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockTurn scripts one Chat result for the MockModel: either tool calls or a
// plain text reply.
type MockTurn struct {
	Text      string
	ToolCalls []core.ToolCall
}

// MockModel is a lightweight in-memory Model for tests & examples. Turns are
// consumed in order; once exhausted it echoes the last user message.
type MockModel struct {
	mu       sync.Mutex
	info     Info
	turns    []MockTurn
	requests []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string, turns ...MockTurn) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		turns: turns,
	}
}

// AddTurn appends a scripted turn.
func (m *MockModel) AddTurn(turn MockTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
}

// Requests returns the requests seen so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Chat implements Model; pops the next scripted turn.
func (m *MockModel) Chat(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var turn MockTurn
	if len(m.turns) > 0 {
		turn = m.turns[0]
		m.turns = m.turns[1:]
	} else {
		last := req.Messages[len(req.Messages)-1]
		turn = MockTurn{Text: fmt.Sprintf("Mock response to: %s", last.Content)}
	}
	m.mu.Unlock()

	var msg core.Message
	finish := "stop"
	if len(turn.ToolCalls) > 0 {
		msg = core.NewToolCallMessage(turn.Text, turn.ToolCalls...)
		finish = "tool_calls"
	} else {
		msg = core.NewAssistantMessage(turn.Text)
	}
	msg.Model = m.info.Name

	return &Response{
		ID:           core.NewID(),
		Message:      msg,
		FinishReason: finish,
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
