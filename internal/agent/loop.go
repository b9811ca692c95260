package agent

import (
	"context"
	"log/slog"

	"github.com/wayde1122/w-agent/internal/llm"
	"github.com/wayde1122/w-agent/internal/tools"
	"github.com/wayde1122/w-agent/pkg/models"
)

// Step is one iteration of the tool-calling loop's trace.
type Step struct {
	Calls   []models.ToolCallRequest
	Results []models.ToolCallResult
	Text    string
}

// Outcome is the tool-calling loop's return value. len(Trace) always
// equals StepsUsed, and for any step with non-empty Calls,
// len(Results) == len(Calls) with matching, positionally aligned ids.
type Outcome struct {
	FinalText      string
	Trace          []Step
	StepsUsed      int
	ReachedMaxSteps bool
}

// LoopConfig configures one run of the tool-calling loop.
type LoopConfig struct {
	// MaxSteps bounds the model<->tool dialogue. Default: 5.
	MaxSteps int

	// UseNativeToolCalling selects native function-calling (tool
	// schemas + structured tool_calls) over the text-embedded JSON
	// protocol.
	UseNativeToolCalling bool

	Model string
}

// DefaultLoopConfig returns the default step budget.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{MaxSteps: 5, UseNativeToolCalling: true}
}

// Loop drives the bounded model<->tool dialogue: at each step, invoke
// the model; if it returns no tool calls, stop; otherwise execute the
// calls and feed their results back in, until a fixed point or the
// step cap.
type Loop struct {
	provider llm.Provider
	registry *tools.Registry
	executor *tools.Executor
	logger   *slog.Logger
}

// NewLoop builds a Loop over the given provider and tool registry.
func NewLoop(provider llm.Provider, registry *tools.Registry, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		provider: provider,
		registry: registry,
		executor: tools.NewExecutor(registry, logger),
		logger:   logger,
	}
}

// Run drives the loop to a fixed point or the step cap. messages is the
// initial working list (system + history + current turn); it is not
// mutated — Run works on its own copy.
func (l *Loop) Run(ctx context.Context, messages []models.Message, cfg LoopConfig) (Outcome, error) {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultLoopConfig().MaxSteps
	}

	working := make([]models.Message, len(messages))
	copy(working, messages)

	schemas := l.registry.Schemas()
	trace := make([]Step, 0, cfg.MaxSteps)

	for step := 1; step <= cfg.MaxSteps; step++ {
		select {
		case <-ctx.Done():
			return Outcome{Trace: trace, StepsUsed: len(trace)}, newError(KindCancellation, "tool-calling loop cancelled", ctx.Err())
		default:
		}

		content, nativeCalls, err := l.invokeModel(ctx, working, schemas, cfg, false)
		if err != nil {
			return Outcome{Trace: trace, StepsUsed: len(trace)}, newError(KindModelCall, "model invocation failed", err)
		}

		var calls []models.ToolCallRequest
		if cfg.UseNativeToolCalling {
			for _, nc := range nativeCalls {
				calls = append(calls, tools.FromNative(nc.ID, nc.Name, nc.Arguments))
			}
		} else {
			calls = l.executor.ParseIntents(content)
		}

		if len(calls) == 0 {
			trace = append(trace, Step{Text: content})
			return Outcome{
				FinalText: content,
				Trace:     trace,
				StepsUsed: step,
			}, nil
		}

		select {
		case <-ctx.Done():
			return Outcome{Trace: trace, StepsUsed: len(trace)}, newError(KindCancellation, "tool-calling loop cancelled", ctx.Err())
		default:
		}

		results := l.executor.ExecuteAll(ctx, calls)
		trace = append(trace, Step{Calls: calls, Results: results, Text: content})

		working = l.appendStep(working, content, calls, results, cfg.UseNativeToolCalling)
	}

	// Step budget exhausted: force a final textual answer. The forced
	// answer is returned as FinalText and is not recorded as a step.
	forced, err := l.forceFinalAnswer(ctx, working, cfg)
	if err != nil {
		return Outcome{Trace: trace, StepsUsed: len(trace), ReachedMaxSteps: true}, newError(KindModelCall, "forced final completion failed", err)
	}
	return Outcome{
		FinalText:       forced,
		Trace:           trace,
		StepsUsed:       cfg.MaxSteps,
		ReachedMaxSteps: true,
	}, nil
}

// invokeModel issues one completion request, in native or text mode.
// forceNoTools is used for the max-steps forced final answer.
func (l *Loop) invokeModel(ctx context.Context, messages []models.Message, schemas []tools.FunctionSchema, cfg LoopConfig, forceNoTools bool) (string, []llm.NativeToolCall, error) {
	req := llm.CompletionRequest{Model: cfg.Model, Messages: messages}

	switch {
	case forceNoTools:
		// Plain completion; no tools offered at all.
	case cfg.UseNativeToolCalling:
		req.Tools = schemas
		req.ToolChoice = llm.ToolChoiceAuto
	}

	resp, err := l.provider.Complete(ctx, req)
	if err != nil {
		return "", nil, err
	}
	return resp.Content, resp.ToolCalls, nil
}

// forceFinalAnswer issues one last completion with tool_choice="none"
// (native) or a plain completion (text mode), to force the model to
// produce text instead of another tool call.
func (l *Loop) forceFinalAnswer(ctx context.Context, messages []models.Message, cfg LoopConfig) (string, error) {
	req := llm.CompletionRequest{Model: cfg.Model, Messages: messages}
	if cfg.UseNativeToolCalling {
		req.ToolChoice = llm.ToolChoiceNone
	}
	resp, err := l.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// appendStep appends the assistant's turn and the tool results to the
// working message list, in the shape the next invocation expects:
// under native tool calling, one role="tool" message per call keyed
// by tool_call_id; under the text protocol, a single synthetic user
// message carrying all formatted results plus a continuation
// instruction.
func (l *Loop) appendStep(working []models.Message, content string, calls []models.ToolCallRequest, results []models.ToolCallResult, native bool) []models.Message {
	assistant := models.Message{Role: models.RoleAssistant, Content: content}
	if native {
		assistant.ToolCalls = calls
	}
	working = append(working, assistant)

	if native {
		for _, r := range results {
			working = append(working, tools.FormatAsMessage(r))
		}
		return working
	}

	var combined string
	for i, r := range results {
		if i > 0 {
			combined += "\n"
		}
		combined += tools.FormatAsText(r)
	}
	combined += "\nContinue your answer using the results above."
	working = append(working, models.Message{Role: models.RoleUser, Content: combined})
	return working
}
