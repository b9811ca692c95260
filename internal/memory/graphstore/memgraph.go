package graphstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Mem is an in-process adjacency-map Store, used for tests and when no
// Neo4j instance is configured.
type Mem struct {
	mu        sync.RWMutex
	entities  map[string]Entity
	relations map[string][]edge // from entity name -> outgoing edges
}

type edge struct {
	to           string
	relationType string
	properties   map[string]any
}

var _ Store = (*Mem)(nil)

// NewMem builds an empty in-memory graph store.
func NewMem() *Mem {
	return &Mem{
		entities:  make(map[string]Entity),
		relations: make(map[string][]edge),
	}
}

func (m *Mem) UpsertEntity(_ context.Context, e Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.entities[e.Name]
	if !ok {
		e.Properties = mergeProps(nil, e.Properties)
		m.entities[e.Name] = e
		return nil
	}
	existing.Properties = mergeProps(existing.Properties, e.Properties)
	if e.ID != "" {
		existing.ID = e.ID
	}
	if e.EntityType != "" {
		existing.EntityType = e.EntityType
	}
	m.entities[e.Name] = existing
	return nil
}

func mergeProps(base, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(incoming))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

func (m *Mem) UpsertRelation(_ context.Context, r Relation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[r.From]; !ok {
		m.entities[r.From] = Entity{Name: r.From, Properties: map[string]any{}}
	}
	if _, ok := m.entities[r.To]; !ok {
		m.entities[r.To] = Entity{Name: r.To, Properties: map[string]any{}}
	}
	for i, existing := range m.relations[r.From] {
		if existing.to == r.To && existing.relationType == r.RelationType {
			m.relations[r.From][i].properties = mergeProps(existing.properties, r.Properties)
			return nil
		}
	}
	m.relations[r.From] = append(m.relations[r.From], edge{
		to:           r.To,
		relationType: r.RelationType,
		properties:   r.Properties,
	})
	return nil
}

// neighbors returns the undirected adjacency of name: outgoing edges
// plus any edge pointing into name from elsewhere.
func (m *Mem) neighbors(name string) []edge {
	var out []edge
	out = append(out, m.relations[name]...)
	for from, edges := range m.relations {
		if from == name {
			continue
		}
		for _, e := range edges {
			if e.to == name {
				out = append(out, edge{to: from, relationType: e.relationType, properties: e.properties})
			}
		}
	}
	return out
}

func (m *Mem) FindRelated(_ context.Context, name string, maxDepth, limit int) ([]Related, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type queued struct {
		name string
		dist int
		path []string
	}
	visited := map[string]bool{name: true}
	queue := []queued{{name: name, dist: 0, path: nil}}
	var results []Related

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.dist >= maxDepth {
			continue
		}
		for _, e := range m.neighbors(cur.name) {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			path := append(append([]string{}, cur.path...), e.relationType)
			ent, ok := m.entities[e.to]
			if !ok {
				ent = Entity{Name: e.to}
			}
			results = append(results, Related{
				Entity:           ent,
				Distance:         cur.dist + 1,
				RelationshipPath: path,
			})
			queue = append(queue, queued{name: e.to, dist: cur.dist + 1, path: path})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *Mem) SearchEntities(_ context.Context, pattern, entityType string, limit int) ([]Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pattern = strings.ToLower(pattern)
	var matches []Entity
	for _, e := range m.entities {
		if pattern != "" && !strings.Contains(strings.ToLower(e.Name), pattern) {
			continue
		}
		if entityType != "" && e.EntityType != entityType {
			continue
		}
		matches = append(matches, e)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *Mem) HealthCheck(context.Context) error { return nil }

func (m *Mem) Close(context.Context) error { return nil }
