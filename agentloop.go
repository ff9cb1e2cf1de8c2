// Package agentloop provides a high-level façade over the agent loop and the
// checkpoint store, enabling rapid construction of tool-calling
// conversational agents. Most applications interact with this package by:
//  1. Creating a Loop via New() around a configured agent (optionally
//     overriding the default in-memory checkpointer and logger)
//  2. Invoking it with user messages and a thread id
//  3. Reading back the updated message list, which interleaves assistant
//     replies with tool-call requests and tool results
//
// Conversation continuity comes from the thread id: invocations sharing an
// id see the same persisted history. Defaults are safe for local development
// and testing; production deployments typically supply a durable
// checkpointer (checkpoint/sqlite) and a structured logger.
package agentloop

import (
	"context"
	"fmt"

	"github.com/movoss/agentloop/agent"
	"github.com/movoss/agentloop/checkpoint"
	"github.com/movoss/agentloop/core"
	"github.com/movoss/agentloop/logging"
)

// Options configures the Loop façade.
type Options struct {
	// Checkpointer persists threads. Defaults to an in-memory store.
	Checkpointer core.Checkpointer
	// Logger defaults to a NoOp logger.
	Logger logging.Logger
}

// Loop aggregates an agent with its checkpoint store.
type Loop struct {
	agent        *agent.Agent
	checkpointer core.Checkpointer
	logger       logging.Logger
}

// New creates a Loop with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(a *agent.Agent, optFns ...func(o *Options)) *Loop {
	opts := Options{
		Checkpointer: checkpoint.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loop{
		agent:        a,
		checkpointer: opts.Checkpointer,
		logger:       opts.Logger,
	}
}

// Agent returns the wrapped agent.
func (l *Loop) Agent() *agent.Agent { return l.agent }

// Checkpointer returns the configured thread store.
func (l *Loop) Checkpointer() core.Checkpointer { return l.checkpointer }

// Invoke runs one conversational turn on the given thread. The thread is
// loaded (or lazily created) from the checkpointer, the agent loop runs to
// completion, and the appended messages plus any tool state mutations are
// persisted before returning. The returned slice is the full updated message
// list for the thread: prior history followed by this turn's records.
func (l *Loop) Invoke(ctx context.Context, threadID string, msgs ...core.Message) ([]core.Message, error) {
	thread, _, err := l.run(ctx, threadID, msgs...)
	if err != nil {
		return nil, err
	}
	return thread.GetMessages(), nil
}

// InvokeText is a convenience wrapper: it sends a single user text message
// and returns the final assistant reply.
func (l *Loop) InvokeText(ctx context.Context, threadID, text string) (string, error) {
	_, res, err := l.run(ctx, threadID, core.NewUserMessage(text))
	if err != nil {
		return "", err
	}
	return res.Reply(), nil
}

// run loads the thread, executes the agent loop and persists the outcome.
// Messages appended before a partial failure are still persisted so the
// thread reflects tool work that already happened.
func (l *Loop) run(ctx context.Context, threadID string, msgs ...core.Message) (*core.Thread, *agent.InvokeResult, error) {
	if threadID == "" {
		threadID = core.NewID()
	}

	thread, err := l.checkpointer.Get(threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load thread: %w", err)
	}

	res, invokeErr := l.agent.Invoke(ctx, thread, msgs...)

	if res != nil {
		if len(res.Messages) > 0 {
			if err := l.checkpointer.Append(threadID, res.Messages...); err != nil {
				return nil, nil, fmt.Errorf("failed to persist messages: %w", err)
			}
		}
		if len(res.StateDelta) > 0 {
			if err := l.checkpointer.ApplyStateDelta(threadID, res.StateDelta); err != nil {
				return nil, nil, fmt.Errorf("failed to persist state delta: %w", err)
			}
		}
	}
	if invokeErr != nil {
		return nil, nil, invokeErr
	}

	return thread, res, nil
}

// Thread returns a snapshot of the persisted thread.
func (l *Loop) Thread(threadID string) (*core.Thread, error) {
	return l.checkpointer.Get(threadID)
}

// ResetThread deletes the thread's persisted history.
func (l *Loop) ResetThread(threadID string) error {
	return l.checkpointer.Delete(threadID)
}
