// Package tools implements the tool abstraction, registry, and executor
// that mediate between an LLM and side-effecting Go functions.
package tools

import (
	"context"

	"github.com/wayde1122/w-agent/pkg/models"
)

// Tool is a named, side-effecting capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() []models.ToolParameter
	Run(ctx context.Context, args map[string]any) (string, error)
}

// ExpandableTool publishes a flat list of child tools at registration
// time instead of being invocable itself. Register treats it as a
// factory: each child is registered under its own name and the parent
// is discarded.
type ExpandableTool interface {
	Expand() []Tool
}

// Func adapts a plain function into a Tool with a single "input:string"
// parameter, matching the registry's function-valued variant.
type Func func(ctx context.Context, input string) (string, error)

// funcTool wraps a Func so it satisfies Tool.
type funcTool struct {
	name        string
	description string
	fn          Func
}

func (f *funcTool) Name() string        { return f.name }
func (f *funcTool) Description() string { return f.description }

func (f *funcTool) Parameters() []models.ToolParameter {
	return []models.ToolParameter{
		{Name: "input", Type: models.ParamString, Description: "free-form input", Required: true},
	}
}

func (f *funcTool) Run(ctx context.Context, args map[string]any) (string, error) {
	input, _ := args["input"].(string)
	return f.fn(ctx, input)
}

// WrapFunc adapts a Func into a Tool for registration alongside struct-based tools.
func WrapFunc(name, description string, fn Func) Tool {
	return &funcTool{name: name, description: description, fn: fn}
}
