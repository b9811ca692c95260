package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Mem is an in-process linear-scan Store. It backs tests and the
// EMBED_MODEL_TYPE=simple offline mode where standing up a real Qdrant
// instance isn't warranted.
type Mem struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	dim      int
	distance Distance
	points   map[string]Point
}

var _ Store = (*Mem)(nil)

// NewMem builds an empty in-memory store.
func NewMem() *Mem {
	return &Mem{collections: make(map[string]*memCollection)}
}

func (m *Mem) EnsureCollection(_ context.Context, name string, dim int, distance Distance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; ok {
		return nil
	}
	m.collections[name] = &memCollection{
		dim:      dim,
		distance: distance,
		points:   make(map[string]Point),
	}
	return nil
}

// CreatePayloadIndex is a no-op: linear scan needs no index.
func (m *Mem) CreatePayloadIndex(context.Context, string, string, IndexKind) error {
	return nil
}

func (m *Mem) collection(name string) (*memCollection, error) {
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("vectorstore: collection %q does not exist", name)
	}
	return c, nil
}

func (m *Mem) Upsert(_ context.Context, name string, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	for _, p := range points {
		c.points[p.ID] = p
	}
	return nil
}

func matches(payload map[string]any, filter *Filter) bool {
	if filter == nil {
		return true
	}
	for field, want := range filter.Equals {
		if fmt.Sprintf("%v", payload[field]) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	for field, wants := range filter.AnyOf {
		got := fmt.Sprintf("%v", payload[field])
		found := false
		for _, w := range wants {
			if fmt.Sprintf("%v", w) == got {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func similarity(a, b []float32, distance Distance) float64 {
	switch distance {
	case DistanceDot:
		return dot(a, b)
	case DistanceEuclid:
		var sum float64
		for i := range a {
			d := float64(a[i] - b[i])
			sum += d * d
		}
		return -math.Sqrt(sum)
	default:
		return cosine(a, b)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	num := dot(a, b)
	var na, nb float64
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return num / (math.Sqrt(na) * math.Sqrt(nb))
}

func (m *Mem) Search(_ context.Context, name string, vector []float32, k int, scoreThreshold float64, filter *Filter) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.collection(name)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(c.points))
	for id, p := range c.points {
		if !matches(p.Payload, filter) {
			continue
		}
		score := similarity(vector, p.Vector, c.distance)
		if score < scoreThreshold {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: score, Payload: p.Payload})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *Mem) DeleteByIDs(_ context.Context, name string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	for _, id := range ids {
		delete(c.points, id)
	}
	return nil
}

func (m *Mem) DeleteByFilter(_ context.Context, name string, filter Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	for id, p := range c.points {
		if matches(p.Payload, &filter) {
			delete(c.points, id)
		}
	}
	return nil
}

func (m *Mem) Clear(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	c.points = make(map[string]Point)
	return nil
}

func (m *Mem) Info(_ context.Context, name string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.collection(name)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, Dimension: c.dim, Count: int64(len(c.points))}, nil
}

func (m *Mem) HealthCheck(context.Context) error { return nil }

func (m *Mem) Close() error { return nil }
