// Package websearch provides a web search tool backed by a hosted,
// Tavily-compatible search API. The search service itself is external; this
// package only issues the HTTP request and adapts the result list for the
// model.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/movoss/agentloop/core"
)

// Topic narrows the search index the service queries.
type Topic = string

const (
	// TopicGeneral searches the general web index.
	TopicGeneral Topic = "general"
	// TopicNews restricts results to recent news sources.
	TopicNews Topic = "news"
)

const defaultBaseURL = "https://api.tavily.com"

// Options configure the search tool. All fields have working defaults except
// APIKey, which falls back to the TAVILY_API_KEY environment variable.
type Options struct {
	APIKey      string
	BaseURL     string
	Topic       Topic
	MaxResults  int
	SearchDepth string // "basic" or "advanced"
	HTTPClient  *http.Client
}

// Result is a single search hit returned to the model.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content,omitempty"` // snippet
	Score   float64 `json:"score,omitempty"`
}

// Response is the parsed reply from the search service.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	Topic       string `json:"topic,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
	SearchDepth string `json:"search_depth,omitempty"`
}

// Search is a web search tool with fixed construction-time parameters
// (result count, topic). It implements tool.Tool with a single `query`
// argument and is safe for concurrent use.
type Search struct {
	opts Options
}

// New constructs the search tool.
func New(optFns ...func(o *Options)) *Search {
	opts := Options{
		BaseURL:     defaultBaseURL,
		Topic:       TopicGeneral,
		MaxResults:  5,
		SearchDepth: "basic",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("TAVILY_API_KEY")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Search{opts: opts}
}

// WithAPIKey sets the search service API key explicitly.
func WithAPIKey(key string) func(o *Options) {
	return func(o *Options) { o.APIKey = key }
}

// WithBaseURL points the tool at a different endpoint (tests, proxies).
func WithBaseURL(baseURL string) func(o *Options) {
	return func(o *Options) { o.BaseURL = baseURL }
}

// WithTopic fixes the search topic.
func WithTopic(topic Topic) func(o *Options) {
	return func(o *Options) { o.Topic = topic }
}

// WithMaxResults fixes the result count per query.
func WithMaxResults(n int) func(o *Options) {
	return func(o *Options) { o.MaxResults = n }
}

// WithSearchDepth selects basic or advanced retrieval.
func WithSearchDepth(depth string) func(o *Options) {
	return func(o *Options) { o.SearchDepth = depth }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) func(o *Options) {
	return func(o *Options) { o.HTTPClient = c }
}

// Name implements tool.Tool.
func (s *Search) Name() string { return "web_search" }

// Description implements tool.Tool.
func (s *Search) Description() string {
	return "Search the web for current information. Returns a list of results with title, URL and a content snippet."
}

// Parameters implements tool.Tool.
func (s *Search) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

// Call implements tool.Tool. The topic and result count are fixed at
// construction; the model only supplies the query.
func (s *Search) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	resp, err := s.Query(toolCtx.Context(), query)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Query performs one search request against the service.
func (s *Search) Query(ctx context.Context, query string) (*Response, error) {
	if s.opts.APIKey == "" {
		return nil, fmt.Errorf("search api key not configured")
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      s.opts.APIKey,
		Query:       query,
		Topic:       s.opts.Topic,
		MaxResults:  s.opts.MaxResults,
		SearchDepth: s.opts.SearchDepth,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying search service: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search service: %d", httpResp.StatusCode)
	}

	var searchResp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if searchResp.Query == "" {
		searchResp.Query = query
	}
	if len(searchResp.Results) > s.opts.MaxResults {
		searchResp.Results = searchResp.Results[:s.opts.MaxResults]
	}

	return &searchResp, nil
}
