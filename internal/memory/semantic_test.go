package memory

import (
	"context"
	"testing"

	"github.com/wayde1122/w-agent/internal/memory/embedding"
	"github.com/wayde1122/w-agent/internal/memory/graphstore"
	"github.com/wayde1122/w-agent/internal/memory/vectorstore"
	"github.com/wayde1122/w-agent/pkg/models"
)

func newTestSemantic(t *testing.T, maxCapacity int) (*Semantic, vectorstore.Store, graphstore.Store) {
	t.Helper()
	store := vectorstore.NewMem()
	embedder := embedding.NewSimple(64)
	graph := graphstore.NewMem()
	ctx := context.Background()
	if err := store.EnsureCollection(ctx, "semantic", embedder.Dimension(), vectorstore.DistanceCosine); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	return NewSemantic(maxCapacity, store, embedder, "semantic", graph, nil), store, graph
}

func TestSemanticConceptIndexKeywordRetrieve(t *testing.T) {
	ctx := context.Background()
	s := NewSemantic(0, nil, nil, "", nil, nil)
	_, _ = s.Add(ctx, models.MemoryItem{Content: "Go is defined as a statically typed language"})
	_, _ = s.Add(ctx, models.MemoryItem{Content: "cats are mammals"})

	results, err := s.Retrieve(ctx, RetrieveQuery{Query: "typed language", Limit: 5})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 match via concept index, got %d", len(results))
	}
}

func TestSemanticEvictsLowestImportanceOnOverflow(t *testing.T) {
	ctx := context.Background()
	s := NewSemantic(2, nil, nil, "", nil, nil)
	low, _ := s.Add(ctx, models.MemoryItem{Content: "low value fact", Importance: 0.1})
	_, _ = s.Add(ctx, models.MemoryItem{Content: "high value fact", Importance: 0.9})
	_, _ = s.Add(ctx, models.MemoryItem{Content: "another high value fact", Importance: 0.8})

	all, _ := s.GetAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected capacity to cap at 2, got %d", len(all))
	}
	for _, item := range all {
		if item.ID == low.ID {
			t.Fatalf("expected lowest-importance item %q to be evicted", low.ID)
		}
	}
}

func TestSemanticClearEmptiesEverything(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSemantic(t, 0)
	_, _ = s.Add(ctx, models.MemoryItem{Content: "some durable fact"})

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, _ := s.Stats(ctx)
	if stats.Count != 0 {
		t.Fatalf("expected empty tier after clear, got %+v", stats)
	}
	if len(s.concept) != 0 {
		t.Fatalf("expected empty concept index after clear, got %d entries", len(s.concept))
	}
	info, err := store.Info(ctx, "semantic")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Count != 0 {
		t.Fatalf("expected vector collection count 0 after clear, got %d", info.Count)
	}
}

func TestSemanticUpdateContentChangeReembeds(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSemantic(t, 0)
	item, _ := s.Add(ctx, models.MemoryItem{Content: "original fact"})

	if _, err := s.Update(ctx, item.ID, "updated fact", nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	results, err := s.Retrieve(ctx, RetrieveQuery{Query: "updated fact", Limit: 5})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 || results[0].Item.Content != "updated fact" {
		t.Fatalf("expected re-embedded content to be searchable, got %+v", results)
	}
	_ = store
}

func TestSemanticUpdateImportanceOnlyDoesNotReembed(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSemantic(t, 0)
	item, _ := s.Add(ctx, models.MemoryItem{Content: "stable content"})

	newImportance := 0.9
	updated, err := s.Update(ctx, item.ID, "", &newImportance)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Importance != 0.9 {
		t.Fatalf("expected importance updated, got %v", updated.Importance)
	}

	info, err := store.Info(ctx, "semantic")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Count != 1 {
		t.Fatalf("expected no duplicate vector point from an importance-only update, got count %d", info.Count)
	}
}

func TestSemanticGraphPassThrough(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSemantic(t, 0)

	_ = s.AddEntity(ctx, models.Entity{EntityID: "ml", Name: "ML", EntityType: "Concept"})
	_ = s.AddEntity(ctx, models.Entity{EntityID: "ai", Name: "AI", EntityType: "Concept"})
	_ = s.AddRelation(ctx, models.Relation{From: "ML", To: "AI", RelationType: "SUBSET_OF"})
	_ = s.AddEntity(ctx, models.Entity{EntityID: "dl", Name: "DL", EntityType: "Concept"})
	_ = s.AddRelation(ctx, models.Relation{From: "DL", To: "ML", RelationType: "SUBSET_OF"})

	related, err := s.FindRelatedEntities(ctx, "DL", 2, 10)
	if err != nil {
		t.Fatalf("FindRelatedEntities: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("expected 2 related entities, got %d: %+v", len(related), related)
	}
	if related[0].Entity.Name != "ML" || related[0].Distance != 1 {
		t.Fatalf("expected ML at distance 1 first, got %+v", related[0])
	}
	if related[1].Entity.Name != "AI" || related[1].Distance != 2 {
		t.Fatalf("expected AI at distance 2 second, got %+v", related[1])
	}
}
