package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/movoss/agentloop/core"
	"github.com/movoss/agentloop/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req searchRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
}

func TestQuery(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req searchRequest) {
		assert.Equal(t, "secret", req.APIKey)
		assert.Equal(t, "golang release", req.Query)
		assert.Equal(t, TopicNews, req.Topic)
		assert.Equal(t, 3, req.MaxResults)

		_ = json.NewEncoder(w).Encode(Response{
			Query: req.Query,
			Results: []Result{
				{Title: "Go 1.24 released", URL: "https://go.dev/blog/go1.24", Content: "snippet", Score: 0.98},
			},
		})
	})
	defer srv.Close()

	s := New(
		WithAPIKey("secret"),
		WithBaseURL(srv.URL),
		WithTopic(TopicNews),
		WithMaxResults(3),
	)

	resp, err := s.Query(context.Background(), "golang release")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Go 1.24 released", resp.Results[0].Title)
}

func TestQueryTruncatesToMaxResults(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req searchRequest) {
		results := make([]Result, 10)
		for i := range results {
			results[i] = Result{Title: "r", URL: "https://example.com"}
		}
		_ = json.NewEncoder(w).Encode(Response{Results: results})
	})
	defer srv.Close()

	s := New(WithAPIKey("secret"), WithBaseURL(srv.URL), WithMaxResults(2))

	resp, err := s.Query(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestQueryMissingAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	s := New(WithBaseURL("http://localhost:0"))
	_, err := s.Query(context.Background(), "anything")
	assert.ErrorContains(t, err, "api key")
}

func TestQueryNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := New(WithAPIKey("bad"), WithBaseURL(srv.URL))
	_, err := s.Query(context.Background(), "anything")
	assert.ErrorContains(t, err, "non-200")
}

func TestCall(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req searchRequest) {
		_ = json.NewEncoder(w).Encode(Response{
			Query:   req.Query,
			Results: []Result{{Title: "hit", URL: "https://example.com"}},
		})
	})
	defer srv.Close()

	s := New(WithAPIKey("secret"), WithBaseURL(srv.URL))
	toolCtx := core.NewToolContext(context.Background(), "t1", "inv1", "c1", "Agent1", nil, logging.NoOpLogger{})

	result, err := s.Call(toolCtx, map[string]any{"query": "anything"})
	require.NoError(t, err)
	resp, ok := result.(*Response)
	require.True(t, ok)
	assert.Len(t, resp.Results, 1)

	_, err = s.Call(toolCtx, map[string]any{})
	assert.ErrorContains(t, err, "query is required")
}

func TestToolMetadata(t *testing.T) {
	s := New()
	assert.Equal(t, "web_search", s.Name())
	assert.NotEmpty(t, s.Description())
	props, _ := s.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "query")
}
