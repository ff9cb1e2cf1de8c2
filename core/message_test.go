package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	u := NewUserMessage("hello")
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "hello", u.Content)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.Timestamp.IsZero())

	a := NewAssistantMessage("hi there")
	assert.Equal(t, RoleAssistant, a.Role)
	assert.True(t, a.IsFinal())

	s := NewSystemMessage("be brief")
	assert.Equal(t, RoleSystem, s.Role)
}

func TestToolCallCorrelation(t *testing.T) {
	call := ToolCall{ID: "call-1", Name: "web_search", Arguments: `{"query":"go"}`}
	req := NewToolCallMessage("", call)
	assert.True(t, req.HasToolCalls())
	assert.False(t, req.IsFinal())

	res := NewToolMessage(call.ID, call.Name, `{"results":[]}`, nil)
	assert.Equal(t, RoleTool, res.Role)
	assert.Equal(t, req.ToolCalls[0].ID, res.ToolCallID)
	assert.Equal(t, "web_search", res.ToolName)
	assert.False(t, res.IsError)
}

func TestToolMessageError(t *testing.T) {
	res := NewToolMessage("call-1", "web_search", "ignored", errors.New("boom"))
	assert.True(t, res.IsError)
	assert.Equal(t, "boom", res.Content)
}

func TestMessageClone(t *testing.T) {
	m := NewToolCallMessage("thinking", ToolCall{ID: "c1", Name: "t"})
	m.Usage = &Usage{TotalTokens: 10}
	m.Metadata = map[string]string{"k": "v"}

	c := m.Clone()
	c.ToolCalls[0].Name = "other"
	c.Usage.TotalTokens = 99
	c.Metadata["k"] = "changed"

	assert.Equal(t, "t", m.ToolCalls[0].Name)
	assert.Equal(t, 10, m.Usage.TotalTokens)
	assert.Equal(t, "v", m.Metadata["k"])
}
