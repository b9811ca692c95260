package memory

import (
	"context"
	"testing"

	"github.com/wayde1122/w-agent/internal/memory/embedding"
	"github.com/wayde1122/w-agent/internal/memory/vectorstore"
	"github.com/wayde1122/w-agent/pkg/models"
)

func newTestEpisodic(t *testing.T) (*Episodic, vectorstore.Store) {
	t.Helper()
	store := vectorstore.NewMem()
	embedder := embedding.NewSimple(64)
	ctx := context.Background()
	if err := store.EnsureCollection(ctx, "episodic", embedder.Dimension(), vectorstore.DistanceCosine); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	return NewEpisodic(0, store, embedder, "episodic", nil), store
}

func TestEpisodicAddDefaultsSessionID(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEpisodic(t)
	item, err := e.Add(ctx, models.MemoryItem{Content: "went to the park"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.SessionID != defaultSessionID {
		t.Fatalf("expected default session id, got %q", item.SessionID)
	}
}

func TestEpisodicRetrieveRestartSafe(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEpisodic(t)
	added, err := e.Add(ctx, models.MemoryItem{
		Content:    "Paris is the capital of France",
		UserID:     "u1",
		SessionID:  "s1",
		Importance: 0.7,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Simulate process restart: drop the in-memory map, rebuild a
	// fresh tier pointed at the same store.
	embedder := embedding.NewSimple(64)
	fresh := NewEpisodic(0, store, embedder, "episodic", nil)

	results, err := fresh.Retrieve(ctx, RetrieveQuery{Query: "capital of France", UserID: "u1", Limit: 5})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result after restart")
	}
	got := results[0]
	if got.Item.ID != added.ID {
		t.Fatalf("expected id to survive restart, got %q want %q", got.Item.ID, added.ID)
	}
	if got.Item.Content != added.Content {
		t.Fatalf("expected content to survive restart, got %q", got.Item.Content)
	}
	if got.Source != "vector" {
		t.Fatalf("expected source=vector, got %q", got.Source)
	}
}

func TestEpisodicForgetImportanceBased(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEpisodic(t)
	_, _ = e.Add(ctx, models.MemoryItem{Content: "keep this", Importance: 0.9})
	_, _ = e.Add(ctx, models.MemoryItem{Content: "drop this", Importance: 0.1})

	removed, err := e.Forget(ctx, ForgetPolicy{Kind: "importance_based", ImportanceFloor: 0.5})
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 item removed, got %d", removed)
	}
	all, _ := e.GetAll(ctx)
	if len(all) != 1 || all[0].Content != "keep this" {
		t.Fatalf("expected only the high-importance item to survive, got %+v", all)
	}
}

func TestEpisodicKeywordFallbackFillsShortfall(t *testing.T) {
	ctx := context.Background()
	e := NewEpisodic(0, nil, nil, "", nil) // no vector store configured
	_, _ = e.Add(ctx, models.MemoryItem{Content: "the meeting happened yesterday"})
	_, _ = e.Add(ctx, models.MemoryItem{Content: "unrelated content"})

	results, err := e.Retrieve(ctx, RetrieveQuery{Query: "meeting", Limit: 5})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 || results[0].Source != "keyword" {
		t.Fatalf("expected 1 keyword-sourced result, got %+v", results)
	}
}
