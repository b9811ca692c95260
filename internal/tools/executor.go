package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wayde1122/w-agent/pkg/models"
)

// Executor wraps a Registry and a monotonic call counter used to mint
// stable ids for tool calls parsed out of free text (native
// function-calling ids are provider-issued and passed through as-is).
type Executor struct {
	registry *Registry
	logger   *slog.Logger
	counter  atomic.Int64
}

// NewExecutor creates an Executor over the given registry.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, logger: logger}
}

var (
	jsonBlockPattern = regexp.MustCompile(`(?s)\[\[TOOL_CALL\]\]\s*(.*?)\s*\[\[/TOOL_CALL\]\]`)
	legacyPattern    = regexp.MustCompile(`\[TOOL_CALL:([^:]+):(.*?)\]`)
)

type jsonBlockBody struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ParseIntents extracts zero or more tool-call intents from a model's
// text response. The JSON-block protocol is tried first; if it
// produces any result the legacy text protocol is never consulted.
// ParseIntents is a total function: it never panics and, on a
// malformed block, logs and skips that block rather than aborting the
// whole parse.
func (e *Executor) ParseIntents(text string) []models.ToolCallRequest {
	if calls := e.parseJSONBlocks(text); len(calls) > 0 {
		return calls
	}
	return e.parseLegacyBlocks(text)
}

func (e *Executor) parseJSONBlocks(text string) []models.ToolCallRequest {
	matches := jsonBlockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	calls := make([]models.ToolCallRequest, 0, len(matches))
	for _, m := range matches {
		var body jsonBlockBody
		if err := json.Unmarshal([]byte(m[1]), &body); err != nil {
			e.logger.Warn("skipping malformed JSON tool-call block", "error", err)
			continue
		}
		calls = append(calls, models.ToolCallRequest{
			ID:        e.nextID(),
			Name:      body.Name,
			Arguments: body.Arguments,
		})
	}
	return calls
}

func (e *Executor) parseLegacyBlocks(text string) []models.ToolCallRequest {
	matches := legacyPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	calls := make([]models.ToolCallRequest, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		params := strings.TrimSpace(m[2])
		calls = append(calls, models.ToolCallRequest{
			ID:        e.nextID(),
			Name:      name,
			Arguments: parseLegacyParams(params),
		})
	}
	return calls
}

// parseLegacyParams decodes the legacy protocol's <params> segment:
// JSON if it begins with '{', else comma-separated key=value pairs
// with primitive parsing, else a free-form string bound to input,
// query, and expression.
func parseLegacyParams(params string) map[string]any {
	if params == "" {
		return map[string]any{}
	}
	if strings.HasPrefix(params, "{") {
		var m map[string]any
		if err := json.Unmarshal([]byte(params), &m); err == nil {
			return m
		}
		// Falls through to the key=value and free-form decoding below
		// on invalid JSON.
	}
	if strings.Contains(params, "=") {
		result := make(map[string]any)
		for _, pair := range strings.Split(params, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			result[key] = parsePrimitive(strings.TrimSpace(kv[1]))
		}
		if len(result) > 0 {
			return result
		}
	}
	return map[string]any{"input": params, "query": params, "expression": params}
}

func parsePrimitive(raw string) any {
	if strings.EqualFold(raw, "true") {
		return true
	}
	if strings.EqualFold(raw, "false") {
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

func (e *Executor) nextID() string {
	n := e.counter.Add(1)
	return fmt.Sprintf("call_%d_%d", time.Now().UnixNano(), n)
}

// FromNative maps provider-supplied native function calls to
// ToolCallRequest, preserving the provider-issued id.
func FromNative(id, name string, arguments map[string]any) models.ToolCallRequest {
	return models.ToolCallRequest{ID: id, Name: name, Arguments: arguments}
}

// Execute runs one tool call and returns its result. Failures —
// unknown tool name or an error raised by the tool body — become
// success=false results; execution never panics or returns a Go
// error across this boundary.
func (e *Executor) Execute(ctx context.Context, call models.ToolCallRequest) models.ToolCallResult {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return models.ToolCallResult{
			ID: call.ID, Name: call.Name,
			Error: fmt.Sprintf("tool not found: %s", call.Name),
		}
	}

	out, err := safeRun(ctx, tool, call.Arguments)
	if err != nil {
		return models.ToolCallResult{
			ID: call.ID, Name: call.Name,
			Error: err.Error(),
		}
	}
	return models.ToolCallResult{
		ID: call.ID, Name: call.Name,
		Output: out, Success: true,
	}
}

// ExecuteAll runs a batch of calls sequentially, in the order given,
// so the result order always matches the tool_call_id correlation the
// caller expects.
func (e *Executor) ExecuteAll(ctx context.Context, calls []models.ToolCallRequest) []models.ToolCallResult {
	results := make([]models.ToolCallResult, len(calls))
	for i, call := range calls {
		select {
		case <-ctx.Done():
			results[i] = models.ToolCallResult{ID: call.ID, Name: call.Name, Error: ctx.Err().Error()}
			continue
		default:
		}
		results[i] = e.Execute(ctx, call)
	}
	return results
}

// FormatAsMessage renders a result for re-insertion into the dialogue
// under native tool calling: a role="tool" message keyed by the
// originating tool_call_id.
func FormatAsMessage(result models.ToolCallResult) models.Message {
	content := result.Output
	if !result.Success {
		content = "错误: " + result.Error
	}
	return models.Message{
		Role:       models.RoleTool,
		Content:    content,
		ToolCallID: result.ID,
		Name:       result.Name,
		Timestamp:  time.Now(),
	}
}

// FormatAsText renders a result as free text, for re-insertion into
// the dialogue under the text protocol.
func FormatAsText(result models.ToolCallResult) string {
	if result.Success {
		return fmt.Sprintf("[工具 %s 返回]: %s", result.Name, result.Output)
	}
	return fmt.Sprintf("[工具 %s 执行失败]: %s", result.Name, result.Error)
}
