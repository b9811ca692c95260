// Package llm defines the model wire contract the tool-calling loop
// drives, plus an OpenAI-compatible client implementation and provider
// autodetection over environment variables.
package llm

import (
	"context"

	"github.com/wayde1122/w-agent/internal/tools"
	"github.com/wayde1122/w-agent/pkg/models"
)

// ToolChoice selects whether the model may invoke tools on a given
// request.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// CompletionRequest is one request to a chat-completions-shaped model
// endpoint.
type CompletionRequest struct {
	Model      string
	Messages   []models.Message
	Tools      []tools.FunctionSchema
	ToolChoice ToolChoice
}

// NativeToolCall is one structured tool invocation returned by a
// provider under native function calling.
type NativeToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// CompletionResponse is a model's reply: free text and, under native
// tool calling, zero or more structured tool calls.
type CompletionResponse struct {
	Content   string
	ToolCalls []NativeToolCall
}

// Provider is the interface the tool-calling loop drives. Implementations
// handle the specifics of one backend (OpenAI, an OpenAI-compatible
// endpoint such as DeepSeek or DashScope, etc.) while presenting this
// unified surface.
//
// Implementations must be safe for concurrent use; a single Provider
// may serve multiple agent instances.
type Provider interface {
	// Complete sends a request and returns the model's reply.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name identifies the provider for logging and diagnostics.
	Name() string
}
