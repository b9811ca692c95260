package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry holds named tools and dispatches calls by name. Registration
// with a duplicate name overwrites the previous entry and emits a
// warning, since silently shadowing a tool is a likely wiring mistake.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool to the registry. An ExpandableTool is never
// registered itself; its children are registered in its place.
func (r *Registry) Register(tool Tool) {
	if expandable, ok := tool.(ExpandableTool); ok {
		for _, child := range expandable.Expand() {
			r.register(child)
		}
		return
	}
	r.register(tool)
}

func (r *Registry) register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; exists {
		r.logger.Warn("overwriting tool with duplicate name", "name", tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Unregister removes a tool by name. It is a no-op if the name is absent.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns a tool by name, or ok=false if none is registered.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the names of all registered tools, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders a multi-line natural-language summary of every
// registered tool, used to augment system prompts under the text
// protocol.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		tool := r.tools[name]
		b.WriteString(fmt.Sprintf("- %s: %s\n", tool.Name(), tool.Description()))
		for _, p := range tool.Parameters() {
			req := ""
			if p.Required {
				req = ", required"
			}
			b.WriteString(fmt.Sprintf("    %s (%s%s): %s\n", p.Name, p.Type, req, p.Description))
		}
	}
	return b.String()
}

// Execute dispatches a call by name and returns its text output. Any
// failure — unknown tool or an error raised by the tool body — is
// converted into a textual error rather than propagated, so the model
// can see and react to it on the next turn.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	tool, ok := r.Get(name)
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", name)
	}
	out, err := safeRun(ctx, tool, args)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}

// Schemas returns the function-calling schema for every registered
// tool, in the format used by OpenAI-compatible chat-completion APIs.
func (r *Registry) Schemas() []FunctionSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]FunctionSchema, 0, len(names))
	for _, name := range names {
		schemas = append(schemas, BuildSchema(r.tools[name]))
	}
	return schemas
}

// safeRun recovers from a panicking tool body, converting it into an
// error result — a tool must never be able to crash the loop.
func safeRun(ctx context.Context, tool Tool, args map[string]any) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool %q panicked: %v", tool.Name(), rec)
		}
	}()
	return tool.Run(ctx, args)
}
