package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wayde1122/w-agent/pkg/models"
)

// Working is the short-lived, capacity-bounded, in-process tier. It
// keeps no external storage: add is O(1), overflow evicts the single
// oldest item, and TTL-expired items are hidden from reads while
// remaining in the map until the next eviction.
type Working struct {
	mu       sync.Mutex
	items    map[string]models.MemoryItem
	order    []string // insertion order, oldest first
	capacity int
	ttl      time.Duration
}

var _ Tier = (*Working)(nil)

// NewWorking builds a working-memory tier bounded to capacity items,
// each expiring ttl after its Add.
func NewWorking(capacity int, ttl time.Duration) *Working {
	if capacity <= 0 {
		capacity = 100
	}
	return &Working{
		items:    make(map[string]models.MemoryItem),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (w *Working) Kind() TierKind { return TierWorking }

func (w *Working) expired(item models.MemoryItem) bool {
	if w.ttl <= 0 {
		return false
	}
	return time.Since(item.Timestamp) > w.ttl
}

func (w *Working) Add(_ context.Context, item models.MemoryItem) (models.MemoryItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	item.Importance = ClampImportance(item.Importance)
	item.MemoryType = models.MemoryWorking

	w.items[item.ID] = item
	w.order = append(w.order, item.ID)

	if len(w.order) > w.capacity {
		oldestID := w.order[0]
		w.order = w.order[1:]
		delete(w.items, oldestID)
	}
	return item, nil
}

func (w *Working) Retrieve(_ context.Context, q RetrieveQuery) ([]models.ScoredMemoryItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	needle := strings.ToLower(q.Query)
	var matches []models.MemoryItem
	for _, id := range w.order {
		item, ok := w.items[id]
		if !ok || w.expired(item) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(item.Content), needle) {
			continue
		}
		if q.UserID != "" && item.UserID != q.UserID {
			continue
		}
		if item.Importance < q.MinImportance {
			continue
		}
		matches = append(matches, item)
	}

	sortByImportanceDesc(matches)

	limit := q.Limit
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]models.ScoredMemoryItem, len(matches))
	for i, m := range matches {
		out[i] = models.ScoredMemoryItem{Item: m, Score: m.Importance, Source: "keyword"}
	}
	return out, nil
}

func (w *Working) Update(_ context.Context, id string, content string, importance *float64) (models.MemoryItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	item, ok := w.items[id]
	if !ok {
		return models.MemoryItem{}, errNotFound(id)
	}
	if content != "" {
		item.Content = content
	}
	if importance != nil {
		item.Importance = ClampImportance(*importance)
	}
	w.items[id] = item
	return item, nil
}

func (w *Working) Remove(_ context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.items[id]; !ok {
		return errNotFound(id)
	}
	delete(w.items, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

func (w *Working) Clear(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = make(map[string]models.MemoryItem)
	w.order = nil
	return nil
}

func (w *Working) Stats(context.Context) (Stats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	live := 0
	for _, item := range w.items {
		if !w.expired(item) {
			live++
		}
	}
	return Stats{Count: live, TotalCount: len(w.items)}, nil
}

func (w *Working) GetAll(context.Context) ([]models.MemoryItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.MemoryItem, 0, len(w.order))
	for _, id := range w.order {
		item := w.items[id]
		if w.expired(item) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
