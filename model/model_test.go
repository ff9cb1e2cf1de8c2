package model

import (
	"context"
	"testing"

	"github.com/movoss/agentloop/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModelScriptedTurns(t *testing.T) {
	m := NewMockModel("mock",
		MockTurn{ToolCalls: []core.ToolCall{{ID: "c1", Name: "lookup", Arguments: `{}`}}},
		MockTurn{Text: "final"},
	)

	req := Request{Messages: []core.Message{core.NewUserMessage("hi")}}

	res, err := m.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", res.FinishReason)
	assert.True(t, res.Message.HasToolCalls())
	assert.Equal(t, "mock", res.Message.Model)

	res, err = m.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "stop", res.FinishReason)
	assert.Equal(t, "final", res.Message.Content)
	assert.True(t, res.Message.IsFinal())
}

func TestMockModelEchoFallback(t *testing.T) {
	m := NewMockModel("mock")

	res, err := m.Chat(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("ping")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: ping", res.Message.Content)
}

func TestMockModelNoMessages(t *testing.T) {
	m := NewMockModel("mock")
	_, err := m.Chat(context.Background(), Request{})
	assert.Error(t, err)
}

func TestMockModelRecordsRequests(t *testing.T) {
	m := NewMockModel("mock", MockTurn{Text: "ok"})

	_, err := m.Chat(context.Background(), Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewUserMessage("hi")},
	})
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be brief", reqs[0].Instructions)
}

func TestMockModelAddTurn(t *testing.T) {
	m := NewMockModel("mock")
	m.AddTurn(MockTurn{Text: "queued"})

	res, err := m.Chat(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "queued", res.Message.Content)
}

func TestMockModelInfo(t *testing.T) {
	m := NewMockModel("test-model")
	info := m.Info()
	assert.Equal(t, "test-model", info.Name)
	assert.Equal(t, "mock", info.Provider)
	assert.True(t, info.SupportsTools)
}

func TestNewToolDefinition(t *testing.T) {
	def := NewToolDefinition("web_search", "Search the web", map[string]any{"type": "object"})
	assert.Equal(t, "function", def.Type)
	assert.Equal(t, "web_search", def.Function.Name)
	assert.Equal(t, "Search the web", def.Function.Description)
}
