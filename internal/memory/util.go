package memory

import (
	"fmt"
	"sort"

	"github.com/wayde1122/w-agent/pkg/models"
)

func errNotFound(id string) error {
	return fmt.Errorf("memory: item %q not found", id)
}

// sortByImportanceDesc orders items by importance descending, a
// deterministic stable sort so equal-importance items keep their
// relative scan order.
func sortByImportanceDesc(items []models.MemoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Importance > items[j].Importance
	})
}

// lowestImportanceID returns the id of the item with the smallest
// importance, ties broken by oldest timestamp (the eviction rule used
// when a capacity-bounded tier overflows). Returns "" for an empty
// set.
func lowestImportanceID(items map[string]models.MemoryItem) string {
	var lowestID string
	var lowest models.MemoryItem
	first := true
	for id, item := range items {
		if first {
			lowestID, lowest, first = id, item, false
			continue
		}
		if item.Importance < lowest.Importance ||
			(item.Importance == lowest.Importance && item.Timestamp.Before(lowest.Timestamp)) {
			lowestID, lowest = id, item
		}
	}
	return lowestID
}
