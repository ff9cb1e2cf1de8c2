package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/movoss/agentloop/core"
	"github.com/movoss/agentloop/logging"
	"github.com/movoss/agentloop/model"
	"github.com/movoss/agentloop/tool"
)

// Options configures an Agent instance. Use functional options with New to
// override defaults.
type Options struct {
	// Instruction is the system prompt, static or dynamic.
	Instruction Instruction
	// Tools initially registered with the agent.
	Tools []tool.Tool
	// MaxSteps caps model calls per invocation (tool loop bound).
	MaxSteps int
	// ToolTimeout bounds each individual tool call. Zero disables it.
	ToolTimeout time.Duration
	// MaxParallelTools caps concurrent tool executions per batch.
	// Zero or negative means no explicit limit.
	MaxParallelTools int
	// MaxHistoryMessages limits the conversation history passed to the
	// model. Zero keeps the full history.
	MaxHistoryMessages int
	// Logger for structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent wires a chat model, registered tools and an instruction into a
// ready-to-invoke conversational unit. It holds no per-conversation state;
// all of that lives on the Thread, so one Agent can serve many threads
// concurrently.
type Agent struct {
	name        string
	llm         model.Model
	instruction Instruction
	tools       map[string]tool.Tool
	toolOrder   []string
	maxSteps    int
	maxHistory  int
	executor    *toolExecutor
	logger      logging.Logger
}

// InvokeResult carries everything one invocation produced.
type InvokeResult struct {
	// Messages appended during the invocation, in order: the incoming
	// messages, assistant replies (some carrying tool calls) and tool
	// results.
	Messages []core.Message
	// StateDelta accumulates thread state mutations made by tools.
	StateDelta map[string]any
	// Usage aggregates token accounting across all model calls.
	Usage core.Usage
	// Steps is the number of model calls performed.
	Steps int
}

// Reply returns the text of the final assistant message, or "" when the
// invocation ended without one.
func (r *InvokeResult) Reply() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].IsFinal() {
			return r.Messages[i].Content
		}
	}
	return ""
}

// New creates an agent with sensible defaults: a generic assistant
// instruction, a 10 step loop bound, 15 second tool timeout and full
// conversation history.
func New(name string, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Instruction: NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxSteps:    10,
		ToolTimeout: 15 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	a := &Agent{
		name:        name,
		llm:         llm,
		instruction: opts.Instruction,
		tools:       make(map[string]tool.Tool),
		maxSteps:    opts.MaxSteps,
		maxHistory:  opts.MaxHistoryMessages,
		executor: &toolExecutor{
			maxParallel: opts.MaxParallelTools,
			toolTimeout: opts.ToolTimeout,
			logger:      opts.Logger,
		},
		logger: opts.Logger,
	}
	a.RegisterTools(opts.Tools...)
	return a
}

// Name returns the agent name used in instructions and logging.
func (a *Agent) Name() string { return a.name }

// Model returns the underlying chat model.
func (a *Agent) Model() model.Model { return a.llm }

// RegisterTool adds a tool to the agent's capability set. Registering a name
// twice replaces the earlier tool.
func (a *Agent) RegisterTool(t tool.Tool) {
	if _, exists := a.tools[t.Name()]; !exists {
		a.toolOrder = append(a.toolOrder, t.Name())
	}
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools at once.
func (a *Agent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *Agent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns registered tool names in registration order.
func (a *Agent) ListTools() []string {
	names := make([]string, len(a.toolOrder))
	copy(names, a.toolOrder)
	return names
}

// Invoke runs one conversational turn against the thread: the incoming
// messages are appended, then the model is called with the accumulated
// history; tool calls in the reply are executed and their results fed back
// until the model answers with a plain assistant reply or MaxSteps is
// reached. The thread is updated in place; the returned result lists only
// what this invocation appended.
func (a *Agent) Invoke(ctx context.Context, thread *core.Thread, incoming ...core.Message) (*InvokeResult, error) {
	if thread == nil {
		return nil, fmt.Errorf("thread is required")
	}

	invocationID := core.NewID()
	logger := a.logger
	logger.Info("agent.invoke.start", "agent", a.name, "thread_id", thread.ID, "invocation_id", invocationID)

	thread.Append(incoming...)

	res := &InvokeResult{
		Messages:   append([]core.Message{}, incoming...),
		StateDelta: map[string]any{},
	}

	defs := tool.Definitions(a.orderedTools())

	for step := 0; step < a.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		instructions, err := a.instruction.Resolve(thread)
		if err != nil {
			return res, fmt.Errorf("failed to resolve instructions: %w", err)
		}

		req := model.Request{
			Instructions: instructions,
			Messages:     a.history(thread),
			Tools:        defs,
		}

		start := time.Now()
		resp, err := a.llm.Chat(ctx, req)
		if err != nil {
			logger.Error("agent.model.error", "agent", a.name, "invocation_id", invocationID, "error", err.Error())
			return res, fmt.Errorf("model call failed: %w", err)
		}
		res.Steps++
		if resp.Usage != nil {
			res.Usage.PromptTokens += resp.Usage.PromptTokens
			res.Usage.CompletionTokens += resp.Usage.CompletionTokens
			res.Usage.TotalTokens += resp.Usage.TotalTokens
		}
		logger.Debug(
			"agent.model.response",
			"agent", a.name,
			"invocation_id", invocationID,
			"finish_reason", resp.FinishReason,
			"tool_calls", len(resp.Message.ToolCalls),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		reply := resp.Message
		thread.Append(reply)
		res.Messages = append(res.Messages, reply)

		if !reply.HasToolCalls() {
			logger.Info("agent.invoke.complete", "agent", a.name, "invocation_id", invocationID, "steps", res.Steps)
			return res, nil
		}

		toolMsgs, delta := a.executor.execute(
			ctx, thread.ID, invocationID, a.name,
			a.tools, thread.StateSnapshot(), reply.ToolCalls,
		)
		thread.Append(toolMsgs...)
		thread.ApplyStateDelta(delta)
		res.Messages = append(res.Messages, toolMsgs...)
		for k, v := range delta {
			res.StateDelta[k] = v
		}
	}

	return res, fmt.Errorf("agent %s exceeded max steps (%d) without a final reply", a.name, a.maxSteps)
}

// orderedTools returns registered tools in registration order so tool
// declarations are stable across calls.
func (a *Agent) orderedTools() []tool.Tool {
	tools := make([]tool.Tool, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		tools = append(tools, a.tools[name])
	}
	return tools
}

// history returns the conversational context, truncated to the configured
// window. Truncation never splits an assistant tool-call message from its
// results: the window start is moved past orphaned tool messages.
func (a *Agent) history(thread *core.Thread) []core.Message {
	msgs := thread.History()
	if a.maxHistory <= 0 || len(msgs) <= a.maxHistory {
		return msgs
	}
	start := len(msgs) - a.maxHistory
	for start < len(msgs) && msgs[start].Role == core.RoleTool {
		start++
	}
	return msgs[start:]
}
