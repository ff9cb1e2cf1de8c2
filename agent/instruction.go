package agent

import (
	"github.com/movoss/agentloop/core"
	"github.com/movoss/agentloop/internal/util"
)

// Provider supplies dynamic instruction text at runtime. Implementations can
// derive instructions from thread state, environment, etc.
type Provider interface {
	Instruction(t *core.Thread) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(t *core.Thread) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(t *core.Thread) (string, error) { return f(t) }

// Instruction represents either a static instruction string or a dynamic
// provider. Static text may contain template markers that are rendered
// against the thread state at resolution time.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(t *core.Thread) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider or rendering
// templates as needed.
func (i Instruction) Resolve(t *core.Thread) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(t)
	}
	var state map[string]any
	if t != nil {
		state = t.StateSnapshot()
	}
	return util.RenderTemplate(i.text, state)
}
