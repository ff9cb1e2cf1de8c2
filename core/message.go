package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author class of a message.
type Role string

const (
	// RoleUser marks human-authored input.
	RoleUser Role = "user"
	// RoleAssistant marks model-authored output, possibly carrying tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of a previously requested tool call.
	RoleTool Role = "tool"
	// RoleSystem marks instruction text injected ahead of the conversation.
	RoleSystem Role = "system"
)

// ToolCall describes a tool invocation requested by an assistant message.
// ID correlates the request with the tool message that answers it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // serialized JSON argument payload
}

// Usage captures token accounting reported by a model provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Message is the unit of conversation exchanged with an agent. After being
// appended to a thread it should be treated as immutable. It captures:
//
//   - Identity and ordering (ID, Timestamp)
//   - Authorship (Role)
//   - Conversational content (Content)
//   - Tool invocation requests on assistant messages (ToolCalls)
//   - Correlation back to a request on tool messages (ToolCallID, ToolName)
//   - Optional provider metadata (Usage, Model, Metadata)
//
// IsError marks a tool message whose execution failed; the content then holds
// the error text so the model can react to it.
type Message struct {
	ID         string            `json:"id"`
	Role       Role              `json:"role"`
	Content    string            `json:"content,omitempty"`
	ToolCalls  []ToolCall        `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolName   string            `json:"tool_name,omitempty"`
	IsError    bool              `json:"is_error,omitempty"`
	Usage      *Usage            `json:"usage,omitempty"`
	Model      string            `json:"model,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewID generates a unique identifier for messages, threads and invocations.
func NewID() string { return uuid.NewString() }

func newMessage(role Role) Message {
	return Message{ID: NewID(), Role: role, Timestamp: time.Now().UTC()}
}

// NewUserMessage creates a human-authored text message.
func NewUserMessage(content string) Message {
	m := newMessage(RoleUser)
	m.Content = content
	return m
}

// NewSystemMessage creates an instruction message.
func NewSystemMessage(content string) Message {
	m := newMessage(RoleSystem)
	m.Content = content
	return m
}

// NewAssistantMessage creates a model-authored text message.
func NewAssistantMessage(content string) Message {
	m := newMessage(RoleAssistant)
	m.Content = content
	return m
}

// NewToolCallMessage creates an assistant message carrying tool invocation
// requests and optional leading text.
func NewToolCallMessage(content string, calls ...ToolCall) Message {
	m := newMessage(RoleAssistant)
	m.Content = content
	m.ToolCalls = calls
	return m
}

// NewToolMessage records the outcome of a tool call. If err is non-nil its
// text becomes the content and the message is flagged as an error result.
func NewToolMessage(callID, toolName, content string, err error) Message {
	m := newMessage(RoleTool)
	m.ToolCallID = callID
	m.ToolName = toolName
	m.Content = content
	if err != nil {
		m.Content = err.Error()
		m.IsError = true
	}
	return m
}

// HasToolCalls reports whether this message requests any tool invocations.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// IsFinal reports whether this message terminates an agent turn: a
// non-partial assistant reply without pending tool calls.
func (m Message) IsFinal() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) == 0
}

// Clone returns a deep copy safe for independent mutation.
func (m Message) Clone() Message {
	c := m
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(c.ToolCalls, m.ToolCalls)
	}
	if m.Usage != nil {
		u := *m.Usage
		c.Usage = &u
	}
	if m.Metadata != nil {
		c.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
