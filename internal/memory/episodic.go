package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wayde1122/w-agent/internal/memory/embedding"
	"github.com/wayde1122/w-agent/internal/memory/vectorstore"
	"github.com/wayde1122/w-agent/pkg/models"
)

const defaultSessionID = "default_session"

// ForgetPolicy selects how Episodic.Forget prunes items.
type ForgetPolicy struct {
	Kind            string // "importance_based", "time_based", "capacity_based"
	ImportanceFloor float64
	MaxAgeDays      int
	CapacityTarget  int
}

// Episodic is the per-event, timestamped, optionally vector-indexed,
// session-scoped tier.
type Episodic struct {
	mu           sync.Mutex
	items        map[string]models.MemoryItem
	episodes     []string            // ordered episode (item) ids
	sessionIndex map[string][]string // sessionID -> episode ids

	maxCapacity int

	store      vectorstore.Store
	embedder   embedding.Provider
	collection string

	logger *slog.Logger
}

var _ Tier = (*Episodic)(nil)

// NewEpisodic builds an episodic tier. store/embedder may be nil, in
// which case retrieval degrades to keyword-only.
func NewEpisodic(maxCapacity int, store vectorstore.Store, embedder embedding.Provider, collection string, logger *slog.Logger) *Episodic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Episodic{
		items:        make(map[string]models.MemoryItem),
		sessionIndex: make(map[string][]string),
		maxCapacity:  maxCapacity,
		store:        store,
		embedder:     embedder,
		collection:   collection,
		logger:       logger,
	}
}

func (e *Episodic) Kind() TierKind { return TierEpisodic }

func (e *Episodic) Add(ctx context.Context, item models.MemoryItem) (models.MemoryItem, error) {
	e.mu.Lock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	if item.SessionID == "" {
		item.SessionID = defaultSessionID
	}
	item.Importance = ClampImportance(item.Importance)
	item.MemoryType = models.MemoryEpisodic

	e.items[item.ID] = item
	e.episodes = append(e.episodes, item.ID)
	e.sessionIndex[item.SessionID] = append(e.sessionIndex[item.SessionID], item.ID)

	var evictedID string
	if e.maxCapacity > 0 && len(e.items) > e.maxCapacity {
		evictedID = lowestImportanceID(e.items)
		if evictedID != "" {
			e.removeLocked(evictedID)
		}
	}
	e.mu.Unlock()

	if evictedID != "" && e.store != nil {
		if err := e.store.DeleteByIDs(ctx, e.collection, []string{evictedID}); err != nil {
			e.logger.Warn("episodic: evict from vector store failed", "id", evictedID, "error", err)
		}
	}

	if e.store != nil && e.embedder != nil {
		vec, err := e.embedder.Embed(ctx, item.Content)
		if err != nil {
			e.logger.Warn("episodic: embed on add failed, item kept in memory only", "error", err)
			return item, nil
		}
		point := vectorstore.Point{ID: item.ID, Vector: vec, Payload: itemToPayload(item)}
		if err := e.store.Upsert(ctx, e.collection, []vectorstore.Point{point}); err != nil {
			e.logger.Warn("episodic: vector upsert failed, item kept in memory only", "error", err)
		}
	}
	return item, nil
}

func (e *Episodic) Retrieve(ctx context.Context, q RetrieveQuery) ([]models.ScoredMemoryItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	var vectorHits []models.ScoredMemoryItem
	if e.store != nil && e.embedder != nil && q.Query != "" {
		vec, err := e.embedder.Embed(ctx, q.Query)
		if err != nil {
			e.logger.Warn("episodic: embed query failed, falling back to keyword retrieve", "error", err)
		} else {
			filter := &vectorstore.Filter{Equals: map[string]any{"memory_type": string(models.MemoryEpisodic)}}
			if q.UserID != "" {
				filter.Equals["user_id"] = q.UserID
			}
			if q.SessionID != "" {
				filter.Equals["session_id"] = q.SessionID
			}
			hits, err := e.store.Search(ctx, e.collection, vec, limit*2, 0, filter)
			if err != nil {
				e.logger.Warn("episodic: vector search failed, falling back to keyword retrieve", "error", err)
			} else {
				vectorHits = e.hydrate(hits)
			}
		}
	}

	seen := make(map[string]bool, len(vectorHits))
	for _, h := range vectorHits {
		seen[h.Item.ID] = true
	}

	results := vectorHits
	if len(results) < limit {
		results = append(results, e.keywordScan(q, seen, limit-len(results))...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Item.Timestamp.After(results[j].Item.Timestamp)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *Episodic) hydrate(hits []vectorstore.Hit) []models.ScoredMemoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.ScoredMemoryItem, 0, len(hits))
	for _, h := range hits {
		item, ok := e.items[h.ID]
		if !ok {
			item = payloadToItem(h.Payload)
			item.ID = h.ID
			e.items[item.ID] = item
			e.episodes = append(e.episodes, item.ID)
			if item.SessionID != "" {
				e.sessionIndex[item.SessionID] = append(e.sessionIndex[item.SessionID], item.ID)
			}
		}
		out = append(out, models.ScoredMemoryItem{Item: item, Score: h.Score, Source: "vector"})
	}
	return out
}

func (e *Episodic) keywordScan(q RetrieveQuery, exclude map[string]bool, want int) []models.ScoredMemoryItem {
	if want <= 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	needle := strings.ToLower(q.Query)
	var out []models.ScoredMemoryItem
	for _, id := range e.episodes {
		if exclude[id] {
			continue
		}
		item := e.items[id]
		if needle != "" && !strings.Contains(strings.ToLower(item.Content), needle) {
			continue
		}
		if q.UserID != "" && item.UserID != q.UserID {
			continue
		}
		if q.SessionID != "" && item.SessionID != q.SessionID {
			continue
		}
		if item.Importance < q.MinImportance {
			continue
		}
		out = append(out, models.ScoredMemoryItem{Item: item, Score: item.Importance, Source: "keyword"})
		if len(out) >= want {
			break
		}
	}
	return out
}

func (e *Episodic) Update(ctx context.Context, id string, content string, importance *float64) (models.MemoryItem, error) {
	e.mu.Lock()
	item, ok := e.items[id]
	if !ok {
		e.mu.Unlock()
		return models.MemoryItem{}, errNotFound(id)
	}
	contentChanged := content != "" && content != item.Content
	if content != "" {
		item.Content = content
	}
	if importance != nil {
		item.Importance = ClampImportance(*importance)
	}
	e.items[id] = item
	e.mu.Unlock()

	if contentChanged && e.store != nil && e.embedder != nil {
		vec, err := e.embedder.Embed(ctx, item.Content)
		if err != nil {
			e.logger.Warn("episodic: re-embed on update failed", "id", id, "error", err)
			return item, nil
		}
		point := vectorstore.Point{ID: item.ID, Vector: vec, Payload: itemToPayload(item)}
		if err := e.store.Upsert(ctx, e.collection, []vectorstore.Point{point}); err != nil {
			e.logger.Warn("episodic: re-embed upsert failed", "id", id, "error", err)
		}
	}
	return item, nil
}

func (e *Episodic) Remove(ctx context.Context, id string) error {
	e.mu.Lock()
	if _, ok := e.items[id]; !ok {
		e.mu.Unlock()
		return errNotFound(id)
	}
	e.removeLocked(id)
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.DeleteByIDs(ctx, e.collection, []string{id}); err != nil {
			e.logger.Warn("episodic: vector delete failed", "id", id, "error", err)
		}
	}
	return nil
}

// removeLocked must be called with e.mu held.
func (e *Episodic) removeLocked(id string) {
	item, ok := e.items[id]
	if !ok {
		return
	}
	delete(e.items, id)
	e.episodes = removeString(e.episodes, id)
	e.sessionIndex[item.SessionID] = removeString(e.sessionIndex[item.SessionID], id)
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func (e *Episodic) Clear(ctx context.Context) error {
	e.mu.Lock()
	e.items = make(map[string]models.MemoryItem)
	e.episodes = nil
	e.sessionIndex = make(map[string][]string)
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.Clear(ctx, e.collection); err != nil {
			e.logger.Warn("episodic: vector clear failed", "error", err)
		}
	}
	return nil
}

func (e *Episodic) Stats(context.Context) (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Count: len(e.items), TotalCount: len(e.items)}, nil
}

func (e *Episodic) GetAll(context.Context) ([]models.MemoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.MemoryItem, 0, len(e.episodes))
	for _, id := range e.episodes {
		out = append(out, e.items[id])
	}
	return out, nil
}

// Forget applies policy, removing matching items from the tier and
// (if configured) the vector store.
func (e *Episodic) Forget(ctx context.Context, policy ForgetPolicy) (int, error) {
	e.mu.Lock()
	var toRemove []string
	now := time.Now()
	for id, item := range e.items {
		switch policy.Kind {
		case "importance_based":
			if item.Importance < policy.ImportanceFloor {
				toRemove = append(toRemove, id)
			}
		case "time_based":
			if now.Sub(item.Timestamp) > time.Duration(policy.MaxAgeDays)*24*time.Hour {
				toRemove = append(toRemove, id)
			}
		case "capacity_based":
			// handled below, after the scan, since it needs the full set
		}
	}
	if policy.Kind == "capacity_based" {
		for len(e.items)-len(toRemove) > policy.CapacityTarget {
			remaining := make(map[string]models.MemoryItem, len(e.items))
			removedSet := make(map[string]bool, len(toRemove))
			for _, id := range toRemove {
				removedSet[id] = true
			}
			for id, item := range e.items {
				if !removedSet[id] {
					remaining[id] = item
				}
			}
			victim := lowestImportanceID(remaining)
			if victim == "" {
				break
			}
			toRemove = append(toRemove, victim)
		}
	}
	for _, id := range toRemove {
		e.removeLocked(id)
	}
	e.mu.Unlock()

	if e.store != nil && len(toRemove) > 0 {
		if err := e.store.DeleteByIDs(ctx, e.collection, toRemove); err != nil {
			e.logger.Warn("episodic: forget vector delete failed", "error", err)
		}
	}
	return len(toRemove), nil
}
