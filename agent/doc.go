// Package agent implements the tool-calling conversation loop. An Agent
// wires a chat model, a set of tools and an instruction (system prompt) into
// a ready-to-invoke unit: each invocation calls the model with the thread
// history, executes any tool calls the reply requests, feeds the results
// back, and repeats until the model produces a plain assistant reply.
package agent
