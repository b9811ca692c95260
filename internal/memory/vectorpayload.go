package memory

import (
	"time"

	"github.com/wayde1122/w-agent/pkg/models"
)

// restartSafeFields are the payload keys with a canonical meaning.
// Anything else travels in item.Metadata.
var restartSafeFields = map[string]bool{
	"memory_id":   true,
	"user_id":     true,
	"memory_type": true,
	"content":     true,
	"importance":  true,
	"timestamp":   true,
	"session_id":  true,
}

// itemToPayload projects a MemoryItem into the canonical vector-store
// payload. Metadata fields are flattened alongside the canonical ones.
func itemToPayload(item models.MemoryItem) map[string]any {
	payload := map[string]any{
		"memory_id":   item.ID,
		"user_id":     item.UserID,
		"memory_type": string(item.MemoryType),
		"content":     item.Content,
		"importance":  item.Importance,
		"timestamp":   item.Timestamp.Format(time.RFC3339Nano),
	}
	if item.SessionID != "" {
		payload["session_id"] = item.SessionID
	}
	for k, v := range item.Metadata {
		if !restartSafeFields[k] {
			payload[k] = v
		}
	}
	return payload
}

// payloadToItem reconstitutes a MemoryItem from a vector-store
// payload. Unknown keys are re-homed under Metadata, so a restart
// against the same collection recovers full retrieval fidelity.
func payloadToItem(payload map[string]any) models.MemoryItem {
	item := models.MemoryItem{Metadata: map[string]any{}}
	if v, ok := payload["memory_id"].(string); ok {
		item.ID = v
	}
	if v, ok := payload["user_id"].(string); ok {
		item.UserID = v
	}
	if v, ok := payload["memory_type"].(string); ok {
		item.MemoryType = models.MemoryType(v)
	}
	if v, ok := payload["content"].(string); ok {
		item.Content = v
	}
	if v, ok := asFloat(payload["importance"]); ok {
		item.Importance = v
	}
	if v, ok := payload["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			item.Timestamp = t
		}
	}
	if v, ok := payload["session_id"].(string); ok {
		item.SessionID = v
	}
	for k, v := range payload {
		if !restartSafeFields[k] {
			item.Metadata[k] = v
		}
	}
	return item
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
