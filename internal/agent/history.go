package agent

import (
	"sync"

	"github.com/wayde1122/w-agent/pkg/models"
)

// History is an ordered, FIFO-capped conversation history shared by
// every agent variant. It is safe for concurrent reads; callers
// running concurrent Run() invocations on the owning agent are out of
// scope — agents are not reentrant.
type History struct {
	mu       sync.RWMutex
	messages []models.Message
	maxLen   int
}

// NewHistory creates a History capped at maxLen messages. maxLen <= 0
// means unbounded.
func NewHistory(maxLen int) *History {
	return &History{maxLen: maxLen}
}

// Append adds a message, dropping the oldest entry if the cap is
// exceeded.
func (h *History) Append(msg models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	if h.maxLen > 0 && len(h.messages) > h.maxLen {
		h.messages = h.messages[len(h.messages)-h.maxLen:]
	}
}

// Messages returns a copy of the current history in order.
func (h *History) Messages() []models.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Clear empties the history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
