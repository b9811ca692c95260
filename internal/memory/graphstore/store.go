// Package graphstore implements the graph store adapter contract:
// entity/relation upsert and bounded-depth traversal for the semantic
// memory tier's knowledge graph.
package graphstore

import "context"

// Entity is a named, typed node. Properties are arbitrary scalar
// attributes merged on repeated upsert.
type Entity struct {
	ID         string
	Name       string
	EntityType string
	Properties map[string]any
}

// Relation is a typed, directed edge between two entities, identified
// by endpoint name rather than ID — callers don't need to look up IDs
// first.
type Relation struct {
	From         string
	To           string
	RelationType string
	Properties   map[string]any
}

// Related is one hop reached from a traversal, with the distance and
// the relation-type path taken to reach it.
type Related struct {
	Entity           Entity
	Distance         int
	RelationshipPath []string
}

// Store is the graph store adapter contract.
type Store interface {
	// UpsertEntity creates the entity or merges Properties into the
	// existing entity of the same Name. The Neo4j store also increments
	// a frequency counter on the node; Mem keeps no such counter.
	UpsertEntity(ctx context.Context, e Entity) error

	// UpsertRelation creates the relation if absent; re-upserting the
	// same (From, To, RelationType) triple is idempotent.
	UpsertRelation(ctx context.Context, r Relation) error

	// FindRelated performs a bounded-depth traversal from the named
	// entity, returning every reachable entity within maxDepth hops up
	// to limit results, nearest first.
	FindRelated(ctx context.Context, name string, maxDepth, limit int) ([]Related, error)

	// SearchEntities finds entities whose name contains pattern,
	// optionally restricted to entityType, up to limit results.
	SearchEntities(ctx context.Context, pattern, entityType string, limit int) ([]Entity, error)

	// HealthCheck reports whether the store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying driver.
	Close(ctx context.Context) error
}
