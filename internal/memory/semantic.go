package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wayde1122/w-agent/internal/memory/embedding"
	"github.com/wayde1122/w-agent/internal/memory/graphstore"
	"github.com/wayde1122/w-agent/internal/memory/vectorstore"
	"github.com/wayde1122/w-agent/pkg/models"
)

// Semantic is the concept/knowledge tier: a keyword concept index plus
// optional vector and graph indices.
type Semantic struct {
	mu      sync.Mutex
	items   map[string]models.MemoryItem
	order   []string
	concept map[string]map[string]bool // word (len>=3) -> set of memory ids

	maxCapacity int

	store      vectorstore.Store
	embedder   embedding.Provider
	collection string

	graph graphstore.Store

	logger *slog.Logger
}

var _ Tier = (*Semantic)(nil)

// NewSemantic builds a semantic tier. store/embedder/graph may each be
// nil independently; absent store degrades retrieval to keyword-only,
// absent graph makes the graph pass-through operations no-ops.
func NewSemantic(maxCapacity int, store vectorstore.Store, embedder embedding.Provider, collection string, graph graphstore.Store, logger *slog.Logger) *Semantic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Semantic{
		items:       make(map[string]models.MemoryItem),
		concept:     make(map[string]map[string]bool),
		maxCapacity: maxCapacity,
		store:       store,
		embedder:    embedder,
		collection:  collection,
		graph:       graph,
		logger:      logger,
	}
}

func (s *Semantic) Kind() TierKind { return TierSemantic }

func conceptWords(content string) []string {
	fields := strings.Fields(strings.ToLower(content))
	var words []string
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]{}")
		if len(f) >= 3 {
			words = append(words, f)
		}
	}
	return words
}

func (s *Semantic) indexLocked(id, content string) {
	for _, w := range conceptWords(content) {
		if s.concept[w] == nil {
			s.concept[w] = make(map[string]bool)
		}
		s.concept[w][id] = true
	}
}

func (s *Semantic) unindexLocked(id, content string) {
	for _, w := range conceptWords(content) {
		if set, ok := s.concept[w]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(s.concept, w)
			}
		}
	}
}

func (s *Semantic) Add(ctx context.Context, item models.MemoryItem) (models.MemoryItem, error) {
	s.mu.Lock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	item.Importance = ClampImportance(item.Importance)
	item.MemoryType = models.MemorySemantic

	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	s.indexLocked(item.ID, item.Content)

	var evictedID string
	if s.maxCapacity > 0 && len(s.items) > s.maxCapacity {
		evictedID = lowestImportanceID(s.items)
		if evictedID != "" {
			s.removeLocked(evictedID)
		}
	}
	s.mu.Unlock()

	if evictedID != "" && s.store != nil {
		if err := s.store.DeleteByIDs(ctx, s.collection, []string{evictedID}); err != nil {
			s.logger.Warn("semantic: evict from vector store failed", "id", evictedID, "error", err)
		}
	}

	if s.store != nil && s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, item.Content)
		if err != nil {
			s.logger.Warn("semantic: embed on add failed, item kept in memory only", "error", err)
			return item, nil
		}
		point := vectorstore.Point{ID: item.ID, Vector: vec, Payload: itemToPayload(item)}
		if err := s.store.Upsert(ctx, s.collection, []vectorstore.Point{point}); err != nil {
			s.logger.Warn("semantic: vector upsert failed, item kept in memory only", "error", err)
		}
	}
	return item, nil
}

func (s *Semantic) Retrieve(ctx context.Context, q RetrieveQuery) ([]models.ScoredMemoryItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	var vectorHits []models.ScoredMemoryItem
	if s.store != nil && s.embedder != nil && q.Query != "" {
		vec, err := s.embedder.Embed(ctx, q.Query)
		if err != nil {
			s.logger.Warn("semantic: embed query failed, falling back to keyword retrieve", "error", err)
		} else {
			filter := &vectorstore.Filter{Equals: map[string]any{"memory_type": string(models.MemorySemantic)}}
			if q.UserID != "" {
				filter.Equals["user_id"] = q.UserID
			}
			hits, err := s.store.Search(ctx, s.collection, vec, limit*2, 0, filter)
			if err != nil {
				s.logger.Warn("semantic: vector search failed, falling back to keyword retrieve", "error", err)
			} else {
				vectorHits = s.hydrate(hits)
			}
		}
	}

	seen := make(map[string]bool, len(vectorHits))
	for _, h := range vectorHits {
		seen[h.Item.ID] = true
	}

	results := vectorHits
	if len(results) < limit {
		results = append(results, s.keywordScan(q, seen, limit-len(results))...)
	}

	sortByScoreDesc(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func sortByScoreDesc(items []models.ScoredMemoryItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Score > items[j-1].Score; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func (s *Semantic) hydrate(hits []vectorstore.Hit) []models.ScoredMemoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ScoredMemoryItem, 0, len(hits))
	for _, h := range hits {
		item, ok := s.items[h.ID]
		if !ok {
			item = payloadToItem(h.Payload)
			item.ID = h.ID
			s.items[item.ID] = item
			s.order = append(s.order, item.ID)
			s.indexLocked(item.ID, item.Content)
		}
		out = append(out, models.ScoredMemoryItem{Item: item, Score: h.Score, Source: "vector"})
	}
	return out
}

func (s *Semantic) keywordScan(q RetrieveQuery, exclude map[string]bool, want int) []models.ScoredMemoryItem {
	if want <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make(map[string]bool)
	words := conceptWords(q.Query)
	if len(words) == 0 {
		for id := range s.items {
			candidates[id] = true
		}
	} else {
		for _, w := range words {
			for id := range s.concept[w] {
				candidates[id] = true
			}
		}
	}

	var out []models.ScoredMemoryItem
	for _, id := range s.order {
		if exclude[id] || !candidates[id] {
			continue
		}
		item := s.items[id]
		if q.UserID != "" && item.UserID != q.UserID {
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

// Update applies the resolved Open Question policy: re-embed iff
// content actually changed; an importance-only change touches only
// the in-memory record.
func (s *Semantic) Update(ctx context.Context, id string, content string, importance *float64) (models.MemoryItem, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return models.MemoryItem{}, errNotFound(id)
	}
	contentChanged := content != "" && content != item.Content
	if contentChanged {
		s.unindexLocked(id, item.Content)
		item.Content = content
		s.indexLocked(id, item.Content)
	}
	if importance != nil {
		item.Importance = ClampImportance(*importance)
	}
	s.items[id] = item
	s.mu.Unlock()

	if contentChanged && s.store != nil && s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, item.Content)
		if err != nil {
			s.logger.Warn("semantic: re-embed on update failed", "id", id, "error", err)
			return item, nil
		}
		point := vectorstore.Point{ID: item.ID, Vector: vec, Payload: itemToPayload(item)}
		if err := s.store.Upsert(ctx, s.collection, []vectorstore.Point{point}); err != nil {
			s.logger.Warn("semantic: re-embed upsert failed", "id", id, "error", err)
		}
	}
	return item, nil
}

func (s *Semantic) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return errNotFound(id)
	}
	s.removeLocked(id)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteByIDs(ctx, s.collection, []string{id}); err != nil {
			s.logger.Warn("semantic: vector delete failed", "id", id, "error", err)
		}
	}
	return nil
}

// Forget applies policy, sharing its interface with Episodic.Forget.
func (s *Semantic) Forget(ctx context.Context, policy ForgetPolicy) (int, error) {
	s.mu.Lock()
	var toRemove []string
	now := time.Now()
	for id, item := range s.items {
		switch policy.Kind {
		case "importance_based":
			if item.Importance < policy.ImportanceFloor {
				toRemove = append(toRemove, id)
			}
		case "time_based":
			if now.Sub(item.Timestamp) > time.Duration(policy.MaxAgeDays)*24*time.Hour {
				toRemove = append(toRemove, id)
			}
		}
	}
	if policy.Kind == "capacity_based" {
		for len(s.items)-len(toRemove) > policy.CapacityTarget {
			removedSet := make(map[string]bool, len(toRemove))
			for _, id := range toRemove {
				removedSet[id] = true
			}
			remaining := make(map[string]models.MemoryItem, len(s.items))
			for id, item := range s.items {
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
		s.removeLocked(id)
	}
	s.mu.Unlock()

	if s.store != nil && len(toRemove) > 0 {
		if err := s.store.DeleteByIDs(ctx, s.collection, toRemove); err != nil {
			s.logger.Warn("semantic: forget vector delete failed", "error", err)
		}
	}
	return len(toRemove), nil
}

// removeLocked must be called with s.mu held.
func (s *Semantic) removeLocked(id string) {
	item, ok := s.items[id]
	if !ok {
		return
	}
	s.unindexLocked(id, item.Content)
	delete(s.items, id)
	s.order = removeString(s.order, id)
}

func (s *Semantic) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]models.MemoryItem)
	s.order = nil
	s.concept = make(map[string]map[string]bool)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(ctx, s.collection); err != nil {
			s.logger.Warn("semantic: vector clear failed", "error", err)
		}
	}
	return nil
}

func (s *Semantic) Stats(context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Count: len(s.items), TotalCount: len(s.items)}, nil
}

func (s *Semantic) GetAll(context.Context) ([]models.MemoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MemoryItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

// --- Graph pass-through ---

func (s *Semantic) AddEntity(ctx context.Context, e models.Entity) error {
	if s.graph == nil {
		return nil
	}
	return s.graph.UpsertEntity(ctx, graphstore.Entity{
		ID:         e.EntityID,
		Name:       e.Name,
		EntityType: e.EntityType,
		Properties: e.Properties,
	})
}

func (s *Semantic) AddRelation(ctx context.Context, r models.Relation) error {
	if s.graph == nil {
		return nil
	}
	return s.graph.UpsertRelation(ctx, graphstore.Relation{
		From:         r.From,
		To:           r.To,
		RelationType: r.RelationType,
		Properties:   r.Properties,
	})
}

func (s *Semantic) FindRelatedEntities(ctx context.Context, name string, maxDepth, limit int) ([]models.RelatedEntity, error) {
	if s.graph == nil {
		return nil, nil
	}
	related, err := s.graph.FindRelated(ctx, name, maxDepth, limit)
	if err != nil {
		s.logger.Warn("semantic: graph traversal failed, returning empty", "error", err)
		return nil, nil
	}
	out := make([]models.RelatedEntity, len(related))
	for i, r := range related {
		out[i] = models.RelatedEntity{
			Entity: models.Entity{
				EntityID:   r.Entity.ID,
				Name:       r.Entity.Name,
				EntityType: r.Entity.EntityType,
				Properties: r.Entity.Properties,
			},
			Distance:         r.Distance,
			RelationshipPath: r.RelationshipPath,
		}
	}
	return out, nil
}

func (s *Semantic) SearchEntities(ctx context.Context, namePattern, entityType string, limit int) ([]models.Entity, error) {
	if s.graph == nil {
		return nil, nil
	}
	entities, err := s.graph.SearchEntities(ctx, namePattern, entityType, limit)
	if err != nil {
		s.logger.Warn("semantic: graph search failed, returning empty", "error", err)
		return nil, nil
	}
	out := make([]models.Entity, len(entities))
	for i, e := range entities {
		out[i] = models.Entity{
			EntityID:   e.ID,
			Name:       e.Name,
			EntityType: e.EntityType,
			Properties: e.Properties,
		}
	}
	return out, nil
}
