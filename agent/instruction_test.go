package agent

import (
	"errors"
	"testing"

	"github.com/movoss/agentloop/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionStaticText(t *testing.T) {
	i := NewInstructionFromText("You are a helpful assistant.")
	assert.True(t, i.IsStatic())

	got, err := i.Resolve(core.NewThread("t1"))
	require.NoError(t, err)
	assert.Equal(t, "You are a helpful assistant.", got)
}

func TestInstructionTemplateRendersThreadState(t *testing.T) {
	i := NewInstructionFromText("You speak {{.language}} with the user.")

	th := core.NewThread("t1")
	th.SetState("language", "German")

	got, err := i.Resolve(th)
	require.NoError(t, err)
	assert.Equal(t, "You speak German with the user.", got)
}

func TestInstructionTemplateDefaultFunc(t *testing.T) {
	i := NewInstructionFromText(`Tone: {{default "neutral" .tone}}`)

	got, err := i.Resolve(core.NewThread("t1"))
	require.NoError(t, err)
	assert.Equal(t, "Tone: neutral", got)
}

func TestInstructionFromFunc(t *testing.T) {
	i := NewInstructionFromFunc(func(th *core.Thread) (string, error) {
		return "thread " + th.ID, nil
	})
	assert.False(t, i.IsStatic())

	got, err := i.Resolve(core.NewThread("t42"))
	require.NoError(t, err)
	assert.Equal(t, "thread t42", got)
}

func TestInstructionProviderError(t *testing.T) {
	i := NewInstructionFromFunc(func(_ *core.Thread) (string, error) {
		return "", errors.New("lookup failed")
	})

	_, err := i.Resolve(core.NewThread("t1"))
	assert.ErrorContains(t, err, "lookup failed")
}

func TestInstructionNilThread(t *testing.T) {
	i := NewInstructionFromText("plain text, no templates")
	got, err := i.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text, no templates", got)
}
