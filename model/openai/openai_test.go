package openai

import (
	"testing"

	"github.com/movoss/agentloop/core"
	"github.com/movoss/agentloop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessagesAssistantWithTextAndToolCalls(t *testing.T) {
	req := model.Request{
		Messages: []core.Message{
			core.NewUserMessage("what is the weather?"),
			core.NewToolCallMessage("Let me check.",
				core.ToolCall{ID: "c1", Name: "get_weather", Arguments: `{"city":"Berlin"}`},
			),
			core.NewToolMessage("c1", "get_weather", "sunny", nil),
		},
	}

	messages := buildMessages(req)
	require.Len(t, messages, 3)

	assistant := messages[1].OfAssistant
	require.NotNil(t, assistant)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "c1", assistant.ToolCalls[0].ID)
	// Leading text alongside tool calls must survive the replay.
	assert.Equal(t, "Let me check.", assistant.Content.OfString.Value)

	toolMsg := messages[2].OfTool
	require.NotNil(t, toolMsg)
	assert.Equal(t, "c1", toolMsg.ToolCallID)
}

func TestBuildMessagesInstructionsBecomeSystemMessage(t *testing.T) {
	req := model.Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewUserMessage("hi")},
	}

	messages := buildMessages(req)
	require.Len(t, messages, 2)
	require.NotNil(t, messages[0].OfSystem)
	require.NotNil(t, messages[1].OfUser)
}
