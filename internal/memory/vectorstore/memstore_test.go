package vectorstore

import (
	"context"
	"testing"
)

func TestMemUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	m := NewMem()
	if err := m.EnsureCollection(ctx, "facts", 3, DistanceCosine); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	err := m.Upsert(ctx, "facts", []Point{
		{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{"user_id": "u1"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Payload: map[string]any{"user_id": "u2"}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := m.Search(ctx, "facts", []float32{1, 0, 0}, 5, 0, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "a" {
		t.Errorf("expected closest hit to be %q, got %q", "a", hits[0].ID)
	}
}

func TestMemSearchFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMem()
	_ = m.EnsureCollection(ctx, "facts", 2, DistanceCosine)
	_ = m.Upsert(ctx, "facts", []Point{
		{ID: "a", Vector: []float32{1, 0}, Payload: map[string]any{"user_id": "u1"}},
		{ID: "b", Vector: []float32{1, 0}, Payload: map[string]any{"user_id": "u2"}},
	})

	hits, err := m.Search(ctx, "facts", []float32{1, 0}, 5, 0, &Filter{Equals: map[string]any{"user_id": "u2"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "b" {
		t.Fatalf("expected only %q, got %+v", "b", hits)
	}
}

func TestMemDeleteByIDsAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMem()
	_ = m.EnsureCollection(ctx, "facts", 2, DistanceCosine)
	_ = m.Upsert(ctx, "facts", []Point{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	})

	if err := m.DeleteByIDs(ctx, "facts", []string{"a"}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	info, err := m.Info(ctx, "facts")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Count != 1 {
		t.Fatalf("expected 1 point remaining, got %d", info.Count)
	}

	if err := m.Clear(ctx, "facts"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	info, _ = m.Info(ctx, "facts")
	if info.Count != 0 {
		t.Fatalf("expected 0 points after clear, got %d", info.Count)
	}
}

func TestMemScoreThreshold(t *testing.T) {
	ctx := context.Background()
	m := NewMem()
	_ = m.EnsureCollection(ctx, "facts", 2, DistanceCosine)
	_ = m.Upsert(ctx, "facts", []Point{
		{ID: "close", Vector: []float32{1, 0}},
		{ID: "orthogonal", Vector: []float32{0, 1}},
	})

	hits, err := m.Search(ctx, "facts", []float32{1, 0}, 5, 0.5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "close" {
		t.Fatalf("expected only the close match above threshold, got %+v", hits)
	}
}

func TestMemUnknownCollection(t *testing.T) {
	ctx := context.Background()
	m := NewMem()
	if _, err := m.Info(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}
