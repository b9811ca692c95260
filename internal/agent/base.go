package agent

import (
	"log/slog"
	"time"

	"github.com/wayde1122/w-agent/pkg/models"
)

// Base is the conversational scaffolding shared by every agent variant:
// a capped history and a logger.
type Base struct {
	History *History
	Logger  *slog.Logger

	SystemPrompt string
}

// NewBase creates a Base with the given max history length (<=0 for
// unbounded) and system prompt. A nil logger falls back to
// slog.Default().
func NewBase(maxHistoryLength int, systemPrompt string, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		History:      NewHistory(maxHistoryLength),
		Logger:       logger,
		SystemPrompt: systemPrompt,
	}
}

// RecordTurn appends a (user, assistant) pair to history.
func (b *Base) RecordTurn(userInput, assistantReply string) {
	now := time.Now()
	b.History.Append(models.Message{Role: models.RoleUser, Content: userInput, Timestamp: now})
	b.History.Append(models.Message{Role: models.RoleAssistant, Content: assistantReply, Timestamp: now})
}

// BuildMessages assembles the initial working list for one turn:
// system prompt, prior history, then the current user input.
func (b *Base) BuildMessages(systemPrompt, userInput string) []models.Message {
	msgs := make([]models.Message, 0, len(b.History.Messages())+2)
	if systemPrompt != "" {
		msgs = append(msgs, models.Message{Role: models.RoleSystem, Content: systemPrompt, Timestamp: time.Now()})
	}
	msgs = append(msgs, b.History.Messages()...)
	msgs = append(msgs, models.Message{Role: models.RoleUser, Content: userInput, Timestamp: time.Now()})
	return msgs
}
