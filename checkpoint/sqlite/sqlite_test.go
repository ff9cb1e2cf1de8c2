package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/movoss/agentloop/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threads.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestAppendAndReloadOrdered(t *testing.T) {
	s, _ := openTestStore(t)

	u := core.NewUserMessage("question")
	a := core.NewToolCallMessage("", core.ToolCall{ID: "c1", Name: "web_search", Arguments: `{"query":"go"}`})
	a.Timestamp = u.Timestamp.Add(time.Millisecond)
	r := core.NewToolMessage("c1", "web_search", "results", nil)
	r.Timestamp = u.Timestamp.Add(2 * time.Millisecond)

	require.NoError(t, s.Append("t1", u, a, r))

	th, err := s.Get("t1")
	require.NoError(t, err)
	msgs := th.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "c1", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, "c1", msgs[2].ToolCallID)
	assert.Equal(t, "web_search", msgs[2].ToolName)
}

func TestReloadOrderWholeSecondTimestamp(t *testing.T) {
	s, _ := openTestStore(t)

	// A timestamp on an exact whole second must still sort before a
	// fractional timestamp later in the same second.
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	first := core.NewUserMessage("first")
	first.Timestamp = base
	second := core.NewAssistantMessage("second")
	second.Timestamp = base.Add(500 * time.Millisecond)

	require.NoError(t, s.Append("t1", first))
	require.NoError(t, s.Append("t1", second))

	th, err := s.Get("t1")
	require.NoError(t, err)
	msgs := th.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Append("t1", core.NewUserMessage("hello")))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	th, err := s2.Get("t1")
	require.NoError(t, err)
	require.Equal(t, 1, th.Len())
	assert.Equal(t, "hello", th.GetMessages()[0].Content)
}

func TestApplyStateDelta(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.ApplyStateDelta("t1", map[string]any{"city": "Berlin"}))
	require.NoError(t, s.ApplyStateDelta("t1", map[string]any{"lang": "de"}))

	th, err := s.Get("t1")
	require.NoError(t, err)
	city, ok := th.GetState("city")
	assert.True(t, ok)
	assert.Equal(t, "Berlin", city)
	lang, _ := th.GetState("lang")
	assert.Equal(t, "de", lang)
}

func TestCreateResetsMessages(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.Append("t1", core.NewUserMessage("hello")))
	_, err := s.Create("t1")
	require.NoError(t, err)

	th, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 0, th.Len())
}

func TestDeleteCascades(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.Append("t1", core.NewUserMessage("hello")))
	require.NoError(t, s.Delete("t1"))

	th, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 0, th.Len())
}

func TestMessageMetadataRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	m := core.NewAssistantMessage("answer")
	m.Model = "gpt-4o-mini"
	m.Usage = &core.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}

	require.NoError(t, s.Append("t1", m))

	th, err := s.Get("t1")
	require.NoError(t, err)
	got := th.GetMessages()[0]
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.NotNil(t, got.Usage)
	assert.Equal(t, 15, got.Usage.TotalTokens)
}
