package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/movoss/agentloop/core"
	"github.com/movoss/agentloop/logging"
	"github.com/movoss/agentloop/tool"
)

// toolExecutor runs a batch of tool calls with bounded parallelism and
// returns exactly one tool message per call, in the original call order.
// Guarantees:
//   - Respects context cancellation between and during calls
//   - Never panics (recovers internally into error tool messages)
//   - Unknown tools and failed calls produce error results, not loop aborts
type toolExecutor struct {
	maxParallel int
	toolTimeout time.Duration
	logger      logging.Logger
}

type execResult struct {
	message core.Message
	delta   map[string]any
}

func (e *toolExecutor) execute(
	ctx context.Context,
	threadID, invocationID, agentName string,
	registry map[string]tool.Tool,
	state map[string]any,
	calls []core.ToolCall,
) ([]core.Message, map[string]any) {
	n := len(calls)
	if n == 0 {
		return nil, nil
	}

	results := make([]execResult, n)

	// Fast path: single call, execute inline.
	if n == 1 {
		results[0] = e.executeSingle(ctx, threadID, invocationID, agentName, registry, state, calls[0])
		return collectResults(results)
	}

	maxPar := e.maxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		if ctx.Err() != nil {
			results[i] = execResult{message: core.NewToolMessage(calls[i].ID, calls[i].Name, "", ctx.Err())}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, tc core.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeSingle(ctx, threadID, invocationID, agentName, registry, state, tc)
		}(i, calls[i])
	}
	wg.Wait()

	e.logger.Debug(
		"agent.tools.batch.complete",
		"agent", agentName,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return collectResults(results)
}

func (e *toolExecutor) executeSingle(
	ctx context.Context,
	threadID, invocationID, agentName string,
	registry map[string]tool.Tool,
	state map[string]any,
	tc core.ToolCall,
) execResult {
	callCtx := ctx
	if e.toolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.toolTimeout)
		defer cancel()
	}

	toolCtx := core.NewToolContext(callCtx, threadID, invocationID, tc.ID, agentName, state, e.logger)

	e.logger.Debug("agent.tool.start", "agent", agentName, "tool", tc.Name, "tool_call_id", tc.ID)

	start := time.Now()
	var (
		result any
		err    error
	)
	func() { // panic safety
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("tool panic: %v", r)
				e.logger.Error("agent.tool.panic", "agent", agentName, "tool", tc.Name, "recover", r, "stack", string(debug.Stack()))
			}
		}()
		result, err = callTool(registry, toolCtx, tc.Name, tc.Arguments)
	}()
	dur := time.Since(start)

	e.logger.Info(
		"agent.tool.executed",
		"agent", agentName,
		"tool", tc.Name,
		"duration_ms", dur.Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		return execResult{message: core.NewToolMessage(tc.ID, tc.Name, "", err)}
	}

	content, err := renderResult(result)
	if err != nil {
		return execResult{message: core.NewToolMessage(tc.ID, tc.Name, "", err)}
	}
	return execResult{
		message: core.NewToolMessage(tc.ID, tc.Name, content, nil),
		delta:   toolCtx.StateDelta(),
	}
}

// callTool centralizes tool lookup, argument decoding and execution.
func callTool(registry map[string]tool.Tool, toolCtx *core.ToolContext, name, args string) (any, error) {
	impl, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", name)
	}

	var argMap map[string]any
	if args == "" {
		argMap = map[string]any{}
	} else if err := json.Unmarshal([]byte(args), &argMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	return impl.Call(toolCtx, argMap)
}

// renderResult serializes a tool result for the model: strings pass through,
// everything else is JSON encoded.
func renderResult(result any) (string, error) {
	switch v := result.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to serialize tool result: %w", err)
		}
		return string(b), nil
	}
}

func collectResults(results []execResult) ([]core.Message, map[string]any) {
	msgs := make([]core.Message, 0, len(results))
	var delta map[string]any
	for _, r := range results {
		if r.message.ID == "" {
			continue
		}
		msgs = append(msgs, r.message)
		for k, v := range r.delta {
			if delta == nil {
				delta = map[string]any{}
			}
			delta[k] = v
		}
	}
	return msgs, delta
}
