package memory

import (
	"context"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	working := NewWorking(100, 0)
	episodic := NewEpisodic(0, nil, nil, "", nil)
	semantic := NewSemantic(0, nil, nil, "", nil, nil)
	return NewManager(working, episodic, semantic, nil, nil)
}

func TestManagerAddAutoClassifies(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	episodicItem, err := m.Add(ctx, "yesterday I went for a walk", "u1", AddOptions{}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if episodicItem.MemoryType != "episodic" {
		t.Fatalf("expected temporal content classified episodic, got %q", episodicItem.MemoryType)
	}

	semanticItem, err := m.Add(ctx, "the definition of a rule is a constraint", "u1", AddOptions{}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if semanticItem.MemoryType != "semantic" {
		t.Fatalf("expected definitional content classified semantic, got %q", semanticItem.MemoryType)
	}

	workingItem, err := m.Add(ctx, "the sky is blue", "u1", AddOptions{}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if workingItem.MemoryType != "working" {
		t.Fatalf("expected unmatched content to default to working, got %q", workingItem.MemoryType)
	}
}

func TestManagerImportanceAlwaysClamped(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	long := ""
	for i := 0; i < 30; i++ {
		long += "this is important and critical content that must be remembered "
	}
	item, err := m.Add(ctx, long, "u1", AddOptions{}, map[string]any{"priority": "high"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Importance < 0 || item.Importance > 1 {
		t.Fatalf("expected importance in [0,1], got %v", item.Importance)
	}
	if item.Importance != 1 {
		t.Fatalf("expected max-boosted importance to clamp to 1, got %v", item.Importance)
	}
}

func TestManagerRetrieveFansOutAcrossTiers(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	pinned := 0.9
	_, _ = m.Add(ctx, "weather update", "u1", AddOptions{MemoryType: TierWorking, Importance: &pinned}, nil)
	_, _ = m.Add(ctx, "weather yesterday was sunny", "u1", AddOptions{MemoryType: TierEpisodic, Importance: &pinned}, nil)
	_, _ = m.Add(ctx, "weather is defined as atmospheric condition", "u1", AddOptions{MemoryType: TierSemantic, Importance: &pinned}, nil)

	results, err := m.Retrieve(ctx, CrossTierRetrieveQuery{RetrieveQuery: RetrieveQuery{Query: "weather", UserID: "u1", Limit: 10}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected a hit from each tier, got %d: %+v", len(results), results)
	}
}

func TestManagerConsolidatePromotesAndDeletes(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	high := 0.8
	item, err := m.Add(ctx, "promote me", "u1", AddOptions{MemoryType: TierWorking, Importance: &high}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	promoted, err := m.Consolidate(ctx, TierWorking, TierEpisodic, 0.5)
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("expected 1 item promoted, got %d", promoted)
	}

	workingAll, _ := m.Working.GetAll(ctx)
	for _, w := range workingAll {
		if w.ID == item.ID {
			t.Fatalf("expected source item removed after consolidation")
		}
	}

	episodicAll, _ := m.Episodic.GetAll(ctx)
	if len(episodicAll) != 1 {
		t.Fatalf("expected 1 item in episodic after consolidation, got %d", len(episodicAll))
	}
	promotedItem := episodicAll[0]
	if promotedItem.Metadata["consolidatedFrom"] != "working" {
		t.Fatalf("expected consolidatedFrom metadata, got %+v", promotedItem.Metadata)
	}
	wantImportance := ClampImportance(0.8 * 1.1)
	if promotedItem.Importance != wantImportance {
		t.Fatalf("expected importance*1.1 capped at 1, got %v want %v", promotedItem.Importance, wantImportance)
	}
}
