// Package memagent composes the memory manager with the tool-calling
// loop into a memory-augmented conversational agent.
package memagent

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wayde1122/w-agent/internal/agent"
	"github.com/wayde1122/w-agent/internal/llm"
	"github.com/wayde1122/w-agent/internal/memory"
	"github.com/wayde1122/w-agent/internal/tools"
	"github.com/wayde1122/w-agent/pkg/models"
)

// Config tunes the per-turn retrieve/augment/write-back cycle.
type Config struct {
	// TopK caps the number of memories retrieved per turn.
	TopK int

	// RagMinScore is the minimum importance a retrieved memory must
	// carry (passed as RetrieveQuery.MinImportance).
	RagMinScore float64

	// ConversationImportanceThreshold gates episodic write-back.
	ConversationImportanceThreshold float64

	// SessionID groups this agent's episodic writes.
	SessionID string

	// ToolsEnabled runs the tool-calling loop; false calls the model
	// once with no tool schemas exposed.
	ToolsEnabled bool

	// KeywordExtractor pulls entity-search terms from user input.
	// Defaults to DefaultKeywordExtractor.
	KeywordExtractor KeywordExtractor

	Loop agent.LoopConfig
}

// DefaultConfig mirrors agent.DefaultLoopConfig's step budget and
// enables tools with a permissive recall threshold.
func DefaultConfig() Config {
	return Config{
		TopK:                            5,
		RagMinScore:                     0,
		ConversationImportanceThreshold: 0.6,
		SessionID:                       "default_session",
		ToolsEnabled:                    true,
		KeywordExtractor:                DefaultKeywordExtractor,
		Loop:                            agent.DefaultLoopConfig(),
	}
}

// Agent is the memory-augmented conversational agent.
type Agent struct {
	manager      *memory.Manager
	loop         *agent.Loop
	registry     *tools.Registry
	history      *agent.History
	systemPrompt string
	cfg          Config
	turn         atomic.Int64
	logger       *slog.Logger
}

// New builds a memory-augmented agent over an already-constructed
// memory.Manager, LLM provider, and tool registry.
func New(manager *memory.Manager, provider llm.Provider, registry *tools.Registry, maxHistoryLength int, systemPrompt string, cfg Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.KeywordExtractor == nil {
		cfg.KeywordExtractor = DefaultKeywordExtractor
	}
	return &Agent{
		manager:      manager,
		loop:         agent.NewLoop(provider, registry, logger),
		registry:     registry,
		history:      agent.NewHistory(maxHistoryLength),
		systemPrompt: systemPrompt,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run executes one turn: retrieve, augment, invoke, write back.
func (a *Agent) Run(ctx context.Context, userInput string) (string, error) {
	memories, entities := a.retrieve(ctx, userInput)

	toolsDescribed := ""
	if a.cfg.ToolsEnabled && a.registry != nil {
		toolsDescribed = a.registry.Describe()
	}
	systemPrompt := augmentPrompt(a.systemPrompt, toolsDescribed, memories, entities)

	messages := make([]models.Message, 0, len(a.history.Messages())+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: systemPrompt, Timestamp: time.Now()})
	messages = append(messages, a.history.Messages()...)
	messages = append(messages, models.Message{Role: models.RoleUser, Content: userInput, Timestamp: time.Now()})

	loopCfg := a.cfg.Loop
	if !a.cfg.ToolsEnabled {
		loopCfg.MaxSteps = 1
	}
	outcome, err := a.loop.Run(ctx, messages, loopCfg)
	if err != nil {
		return "", err
	}

	a.writeBack(ctx, userInput, outcome.FinalText)

	now := time.Now()
	a.history.Append(models.Message{Role: models.RoleUser, Content: userInput, Timestamp: now})
	a.history.Append(models.Message{Role: models.RoleAssistant, Content: outcome.FinalText, Timestamp: now})

	return outcome.FinalText, nil
}

// retrieve fetches cross-tier memories and entity matches for the
// keywords extracted from userInput. The memory fetch and the
// per-keyword entity searches run concurrently: none of them depend
// on each other's result, and entity lookups don't share mutable
// state, so an errgroup fans them out instead of running them one at
// a time.
func (a *Agent) retrieve(ctx context.Context, userInput string) ([]models.ScoredMemoryItem, []models.Entity) {
	keywords := a.cfg.KeywordExtractor(userInput)
	entitiesByKeyword := make([][]models.Entity, len(keywords))

	var memories []models.ScoredMemoryItem
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		memories, err = a.manager.Retrieve(ctx, memory.CrossTierRetrieveQuery{
			RetrieveQuery: memory.RetrieveQuery{
				Query:         userInput,
				Limit:         a.cfg.TopK,
				MinImportance: a.cfg.RagMinScore,
			},
		})
		if err != nil {
			a.logger.Warn("memagent: memory retrieve failed, continuing without recall", "error", err)
		}
		return nil
	})

	for i, kw := range keywords {
		i, kw := i, kw
		group.Go(func() error {
			found, err := a.manager.Semantic.SearchEntities(gctx, kw, "", 3)
			if err != nil {
				a.logger.Warn("memagent: entity search failed", "keyword", kw, "error", err)
				return nil
			}
			entitiesByKeyword[i] = found
			return nil
		})
	}

	_ = group.Wait() // member goroutines never return a non-nil error; failures are logged and treated as empty results

	var entities []models.Entity
	for _, found := range entitiesByKeyword {
		entities = append(entities, found...)
	}
	return memories, entities
}

func (a *Agent) writeBack(ctx context.Context, userInput, assistantReply string) {
	score := conversationImportance(userInput)
	if score < a.cfg.ConversationImportanceThreshold {
		return
	}

	turn := a.turn.Add(1)
	_, err := a.manager.Episodic.Add(ctx, models.MemoryItem{
		Content:    userInput,
		SessionID:  a.cfg.SessionID,
		Importance: score,
		Metadata:   map[string]any{"turn": turn},
	})
	if err != nil {
		a.logger.Warn("memagent: episodic write-back failed", "error", err)
	}

	if containsKnowledgeIndicator(assistantReply) {
		_, err := a.manager.Semantic.Add(ctx, models.MemoryItem{
			Content:    assistantReply,
			Importance: memory.ClampImportance(score * 0.8),
		})
		if err != nil {
			a.logger.Warn("memagent: semantic write-back failed", "error", err)
		}
	}
}
