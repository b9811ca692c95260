// Package memory implements a three-tier memory hierarchy: working,
// episodic, and semantic tiers behind a common capability set,
// coordinated by a Manager façade.
package memory

import (
	"context"

	"github.com/wayde1122/w-agent/pkg/models"
)

// RetrieveQuery bundles the optional filters accepted by Retrieve
// across all three tiers.
type RetrieveQuery struct {
	Query         string
	UserID        string
	SessionID     string
	Limit         int
	MinImportance float64
}

// Stats reports a tier's current occupancy. Count is the number of
// live (non-expired) items; TotalCount additionally includes items
// retained in the backing map but hidden from reads (working memory's
// TTL-expired entries).
type Stats struct {
	Count      int
	TotalCount int
}

// TierKind tags which of the three tiers a Tier implementation is,
// for dispatch by the Manager without type assertions.
type TierKind string

const (
	TierWorking  TierKind = "working"
	TierEpisodic TierKind = "episodic"
	TierSemantic TierKind = "semantic"
)

// Tier is the capability set common to all three memory tiers. Tiers
// differ in capacity, I/O cost, and retrieval semantics but are driven
// through this one interface by the Manager.
type Tier interface {
	Kind() TierKind
	Add(ctx context.Context, item models.MemoryItem) (models.MemoryItem, error)
	Retrieve(ctx context.Context, q RetrieveQuery) ([]models.ScoredMemoryItem, error)
	Update(ctx context.Context, id string, content string, importance *float64) (models.MemoryItem, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	GetAll(ctx context.Context) ([]models.MemoryItem, error)
}

// ClampImportance restricts importance to the [0,1] range.
func ClampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
