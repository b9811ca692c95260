// Package vectorstore implements the vector store adapter contract:
// collection management, upsert with payload, filtered ANN search,
// and delete by id or filter.
package vectorstore

import "context"

// Distance is the similarity metric a collection is created with.
type Distance string

const (
	DistanceCosine Distance = "cosine"
	DistanceDot    Distance = "dot"
	DistanceEuclid Distance = "euclid"
)

// IndexKind is the payload-field index type requested by
// CreatePayloadIndex.
type IndexKind string

const (
	IndexKeyword IndexKind = "keyword"
	IndexInteger IndexKind = "integer"
	IndexFloat   IndexKind = "float"
)

// Point is one vector plus its payload, keyed by a caller-supplied id
// that upsert preserves verbatim.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Filter is an equality match across payload fields, AND-composed
// across the map's entries. A field may be matched against any of
// several values (OR within one field) via AnyOf.
type Filter struct {
	Equals map[string]any
	AnyOf  map[string][]any
}

// Hit is one search result.
type Hit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Info summarizes a collection's current state.
type Info struct {
	Name      string
	Dimension int
	Count     int64
}

// Store is the vector store adapter contract. All writes are durable
// before returning; a failing Store degrades the caller's retrieval to
// keyword search rather than propagating — that degradation lives in
// the memory tiers, not here.
type Store interface {
	// EnsureCollection creates the named collection if absent, fixing
	// its dimension and distance metric.
	EnsureCollection(ctx context.Context, name string, dim int, distance Distance) error

	// CreatePayloadIndex prepares field for efficient filtering.
	CreatePayloadIndex(ctx context.Context, collection, field string, kind IndexKind) error

	// Upsert writes points, creating or overwriting by id.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k nearest points to vector, optionally
	// filtered and score-thresholded.
	Search(ctx context.Context, collection string, vector []float32, k int, scoreThreshold float64, filter *Filter) ([]Hit, error)

	// DeleteByIDs removes points by id.
	DeleteByIDs(ctx context.Context, collection string, ids []string) error

	// DeleteByFilter removes every point matching filter.
	DeleteByFilter(ctx context.Context, collection string, filter Filter) error

	// Clear removes every point in the collection.
	Clear(ctx context.Context, collection string) error

	// Info reports the collection's current state.
	Info(ctx context.Context, collection string) (Info, error)

	// HealthCheck reports whether the store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying client connection.
	Close() error
}
