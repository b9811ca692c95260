package memory

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/wayde1122/w-agent/internal/memory/graphstore"
	"github.com/wayde1122/w-agent/pkg/models"
)

// episodicTriggers and semanticTriggers drive auto-classification on
// Add when the caller leaves MemoryType unset.
var episodicTriggers = []string{"yesterday", "today", "remember", "happened", "earlier", "recall", "last time"}
var semanticTriggers = []string{"definition", "concept", "rule", "principle", "defined", "means that", "is a type of"}

// importanceKeywords bumps the heuristic importance score when
// present.
var importanceKeywords = []string{"important", "critical", "urgent", "must", "always", "never", "remember this"}

// Manager is the façade over the three tiers: it auto-classifies,
// estimates importance, fans retrieval out across tiers, and
// coordinates consolidation and forgetting.
type Manager struct {
	Working  *Working
	Episodic *Episodic
	Semantic *Semantic

	graph  graphstore.Store
	logger *slog.Logger
}

// NewManager builds a manager over the three already-constructed
// tiers. graph may be nil if no graph store is configured; Close then
// becomes a no-op for the graph side.
func NewManager(working *Working, episodic *Episodic, semantic *Semantic, graph graphstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{Working: working, Episodic: episodic, Semantic: semantic, graph: graph, logger: logger}
}

func (m *Manager) tier(kind TierKind) Tier {
	switch kind {
	case TierEpisodic:
		return m.Episodic
	case TierSemantic:
		return m.Semantic
	default:
		return m.Working
	}
}

func (m *Manager) tiers() []Tier {
	return []Tier{m.Working, m.Episodic, m.Semantic}
}

// classify picks a tier for content with no explicit memory type, by
// matching against the trigger word lists; unmatched content defaults
// to working.
func classify(content string) TierKind {
	lower := strings.ToLower(content)
	for _, w := range episodicTriggers {
		if strings.Contains(lower, w) {
			return TierEpisodic
		}
	}
	for _, w := range semanticTriggers {
		if strings.Contains(lower, w) {
			return TierSemantic
		}
	}
	return TierWorking
}

// EstimateImportance implements a base-0.5 heuristic: length bonus,
// keyword bonus, and a priority-metadata adjustment, clamped to [0,1].
func EstimateImportance(content string, metadata map[string]any) float64 {
	score := 0.5
	if len(content) > 100 {
		score += 0.1
	}
	lower := strings.ToLower(content)
	for _, w := range importanceKeywords {
		if strings.Contains(lower, w) {
			score += 0.2
			break
		}
	}
	if metadata != nil {
		switch metadata["priority"] {
		case "high":
			score += 0.3
		case "low":
			score -= 0.2
		}
	}
	return ClampImportance(score)
}

// AddOptions lets a caller pin the tier and/or importance explicitly;
// zero values trigger auto-classification / the importance heuristic.
type AddOptions struct {
	MemoryType TierKind
	Importance *float64
}

// Add classifies (if needed), scores importance (if not pinned), and
// writes the item into the resolved tier.
func (m *Manager) Add(ctx context.Context, content, userID string, opts AddOptions, metadata map[string]any) (models.MemoryItem, error) {
	kind := opts.MemoryType
	if kind == "" {
		if t, ok := metadata["type"].(string); ok && t != "" {
			kind = TierKind(t)
		} else {
			kind = classify(content)
		}
	}

	importance := EstimateImportance(content, metadata)
	if opts.Importance != nil {
		importance = ClampImportance(*opts.Importance)
	}

	item := models.MemoryItem{
		Content:    content,
		UserID:     userID,
		Importance: importance,
		Metadata:   metadata,
	}
	return m.tier(kind).Add(ctx, item)
}

// CrossTierRetrieveQuery adds an optional tier restriction list on top
// of RetrieveQuery; an empty Tiers fans out to all three.
type CrossTierRetrieveQuery struct {
	RetrieveQuery
	Tiers []TierKind
}

// Retrieve fans a query out across enabled tiers with
// perTypeLimit = ceil(limit / tierCount), unions the results, sorts by
// importance descending, and truncates to limit. A failing tier is
// logged and does not abort the call.
func (m *Manager) Retrieve(ctx context.Context, q CrossTierRetrieveQuery) ([]models.ScoredMemoryItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	tiers := q.Tiers
	if len(tiers) == 0 {
		tiers = []TierKind{TierWorking, TierEpisodic, TierSemantic}
	}
	perTierLimit := int(math.Ceil(float64(limit) / float64(len(tiers))))

	sub := q.RetrieveQuery
	sub.Limit = perTierLimit

	var all []models.ScoredMemoryItem
	for _, kind := range tiers {
		results, err := m.tier(kind).Retrieve(ctx, sub)
		if err != nil {
			m.logger.Warn("memory manager: tier retrieve failed, continuing with other tiers", "tier", kind, "error", err)
			continue
		}
		all = append(all, results...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Item.Importance > all[j].Item.Importance
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Consolidate promotes items from one tier to another: every item in
// fromTier with importance >= threshold is removed from the source and
// re-created in the target with importance*1.1 (capped at 1) and
// metadata.consolidatedFrom set.
func (m *Manager) Consolidate(ctx context.Context, fromTier, toTier TierKind, threshold float64) (int, error) {
	source := m.tier(fromTier)
	target := m.tier(toTier)

	items, err := source.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, item := range items {
		if item.Importance < threshold {
			continue
		}
		if err := source.Remove(ctx, item.ID); err != nil {
			m.logger.Warn("memory manager: consolidate remove-from-source failed", "id", item.ID, "error", err)
			continue
		}
		metadata := make(map[string]any, len(item.Metadata)+1)
		for k, v := range item.Metadata {
			metadata[k] = v
		}
		metadata["consolidatedFrom"] = string(fromTier)

		newItem := models.MemoryItem{
			Content:    item.Content,
			UserID:     item.UserID,
			Importance: ClampImportance(item.Importance * 1.1),
			Metadata:   metadata,
		}
		if _, err := target.Add(ctx, newItem); err != nil {
			m.logger.Warn("memory manager: consolidate add-to-target failed", "id", item.ID, "error", err)
			continue
		}
		promoted++
	}
	return promoted, nil
}

// Forget delegates to the named tier's own forget policy. Working
// memory has no forgetting policy of its own: for it Forget removes
// nothing and returns (0, nil).
func (m *Manager) Forget(ctx context.Context, kind TierKind, policy ForgetPolicy) (int, error) {
	switch kind {
	case TierEpisodic:
		return m.Episodic.Forget(ctx, policy)
	case TierSemantic:
		return m.Semantic.Forget(ctx, policy)
	default:
		return 0, nil
	}
}

// Close releases the semantic tier's graph driver; vector adapter
// pools are torn down by the host.
func (m *Manager) Close(ctx context.Context) error {
	if m.graph != nil {
		return m.graph.Close(ctx)
	}
	return nil
}
