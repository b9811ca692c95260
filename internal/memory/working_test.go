package memory

import (
	"context"
	"testing"
	"time"

	"github.com/wayde1122/w-agent/pkg/models"
)

func TestWorkingAddEvictsOldestOnOverflow(t *testing.T) {
	ctx := context.Background()
	w := NewWorking(2, 0)

	first, _ := w.Add(ctx, models.MemoryItem{Content: "first", Importance: 0.9})
	_, _ = w.Add(ctx, models.MemoryItem{Content: "second"})
	_, _ = w.Add(ctx, models.MemoryItem{Content: "third"})

	all, _ := w.GetAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected capacity to cap at 2, got %d", len(all))
	}
	for _, item := range all {
		if item.ID == first.ID {
			t.Fatalf("expected oldest item evicted regardless of importance, found %q", first.ID)
		}
	}
}

func TestWorkingRetrieveFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	w := NewWorking(10, 0)
	_, _ = w.Add(ctx, models.MemoryItem{Content: "the weather is nice", UserID: "u1", Importance: 0.3})
	_, _ = w.Add(ctx, models.MemoryItem{Content: "the weather is bad", UserID: "u1", Importance: 0.8})
	_, _ = w.Add(ctx, models.MemoryItem{Content: "the weather is cold", UserID: "u2", Importance: 0.9})

	results, err := w.Retrieve(ctx, RetrieveQuery{Query: "weather", UserID: "u1", Limit: 10})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for u1, got %d", len(results))
	}
	if results[0].Item.Importance < results[1].Item.Importance {
		t.Fatalf("expected descending importance order, got %+v", results)
	}
}

func TestWorkingTTLHidesExpiredFromReads(t *testing.T) {
	ctx := context.Background()
	w := NewWorking(10, time.Millisecond)
	item, _ := w.Add(ctx, models.MemoryItem{Content: "fleeting"})
	time.Sleep(5 * time.Millisecond)

	all, _ := w.GetAll(ctx)
	if len(all) != 0 {
		t.Fatalf("expected expired item hidden from GetAll, got %d", len(all))
	}

	stats, _ := w.Stats(ctx)
	if stats.Count != 0 {
		t.Fatalf("expected live count 0, got %d", stats.Count)
	}
	if stats.TotalCount != 1 {
		t.Fatalf("expected raw totalCount to still include the expired item, got %d", stats.TotalCount)
	}
	_ = item
}

func TestWorkingClear(t *testing.T) {
	ctx := context.Background()
	w := NewWorking(10, 0)
	_, _ = w.Add(ctx, models.MemoryItem{Content: "x"})
	if err := w.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, _ := w.Stats(ctx)
	if stats.Count != 0 || stats.TotalCount != 0 {
		t.Fatalf("expected empty stats after clear, got %+v", stats)
	}
}
