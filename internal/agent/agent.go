package agent

import (
	"context"

	"github.com/wayde1122/w-agent/internal/llm"
	"github.com/wayde1122/w-agent/internal/tools"
)

// Agent composes a Base with a Loop: a plain tool-calling conversational
// agent with no memory subsystem. MemoryAugmented (internal/memagent)
// layers retrieval and write-back on top of the same Loop.
type Agent struct {
	*Base
	loop   *Loop
	config LoopConfig
}

// New builds a plain Agent.
func New(provider llm.Provider, registry *tools.Registry, maxHistoryLength int, systemPrompt string) *Agent {
	base := NewBase(maxHistoryLength, systemPrompt, nil)
	return &Agent{
		Base:   base,
		loop:   NewLoop(provider, registry, base.Logger),
		config: DefaultLoopConfig(),
	}
}

// WithLoopConfig overrides the loop configuration (step budget, native
// vs text tool calling).
func (a *Agent) WithLoopConfig(cfg LoopConfig) *Agent {
	a.config = cfg
	return a
}

// Run handles one user turn: builds the message list from history, drives
// the tool-calling loop, records the turn, and returns the reply text.
func (a *Agent) Run(ctx context.Context, userInput string) (string, error) {
	messages := a.BuildMessages(a.SystemPrompt, userInput)
	outcome, err := a.loop.Run(ctx, messages, a.config)
	if err != nil {
		return "", err
	}
	a.RecordTurn(userInput, outcome.FinalText)
	return outcome.FinalText, nil
}
