package memagent

import (
	"fmt"
	"strings"

	"github.com/wayde1122/w-agent/pkg/models"
)

// knowledgeIndicators gates semantic write-back of the assistant's
// reply.
var knowledgeIndicators = []string{
	"is defined as", "is a type of", "refers to", "means that", "the rule is",
}

func containsKnowledgeIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range knowledgeIndicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// augmentPrompt builds the system prompt: base + tool descriptions
// (if toolsDescribed is non-empty) + memories block + entities block.
func augmentPrompt(base string, toolsDescribed string, memories []models.ScoredMemoryItem, entities []models.Entity) string {
	var b strings.Builder
	b.WriteString(base)

	if toolsDescribed != "" {
		b.WriteString("\n\nAvailable tools:\n")
		b.WriteString(toolsDescribed)
	}

	if len(memories) > 0 {
		b.WriteString("\n\nRelevant memories:\n")
		for _, m := range memories {
			fmt.Fprintf(&b, "- [%s, score=%.2f] %s\n", m.Item.MemoryType, m.Score, m.Item.Content)
		}
	}

	if len(entities) > 0 {
		b.WriteString("\nKnown entities:\n")
		for _, e := range entities {
			if desc, ok := e.Properties["description"].(string); ok && desc != "" {
				fmt.Fprintf(&b, "- %s (%s): %s\n", e.Name, e.EntityType, desc)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", e.Name, e.EntityType)
			}
		}
	}

	return b.String()
}

// conversationImportance scores a user utterance by length, question
// presence, and importance keywords.
func conversationImportance(text string) float64 {
	score := 0.3
	if len(text) > 50 {
		score += 0.2
	}
	if strings.Contains(text, "?") {
		score += 0.1
	}
	lower := strings.ToLower(text)
	for _, w := range []string{"remember", "important", "critical", "must", "always", "never"} {
		if strings.Contains(lower, w) {
			score += 0.4
			break
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
