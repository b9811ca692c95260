package vectorstore

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// QdrantConfig configures a connection to a Qdrant instance.
type QdrantConfig struct {
	// Host and Port address the gRPC endpoint.
	Host string
	Port int

	// APIKey authenticates against Qdrant Cloud; empty for a local
	// instance with no auth.
	APIKey string

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool
}

// Qdrant implements Store against a real Qdrant server.
type Qdrant struct {
	client *qdrant.Client
}

var _ Store = (*Qdrant)(nil)

// NewQdrant dials the configured Qdrant instance.
func NewQdrant(cfg QdrantConfig) (*Qdrant, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial qdrant: %w", err)
	}
	return &Qdrant{client: client}, nil
}

func toQdrantDistance(d Distance) qdrant.Distance {
	switch d {
	case DistanceDot:
		return qdrant.Distance_Dot
	case DistanceEuclid:
		return qdrant.Distance_Euclid
	default:
		return qdrant.Distance_Cosine
	}
}

func (q *Qdrant) EnsureCollection(ctx context.Context, name string, dim int, distance Distance) error {
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("vectorstore: check collection %q: %w", name, err)
	}
	if exists {
		return nil
	}
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: toQdrantDistance(distance),
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %q: %w", name, err)
	}
	return nil
}

func toQdrantFieldType(kind IndexKind) qdrant.FieldType {
	switch kind {
	case IndexInteger:
		return qdrant.FieldType_FieldTypeInteger
	case IndexFloat:
		return qdrant.FieldType_FieldTypeFloat
	default:
		return qdrant.FieldType_FieldTypeKeyword
	}
}

func (q *Qdrant) CreatePayloadIndex(ctx context.Context, collection, field string, kind IndexKind) error {
	fieldType := toQdrantFieldType(kind)
	_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      field,
		FieldType:      &fieldType,
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create payload index %s.%s: %w", collection, field, err)
	}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	upsertPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		upsertPoints = append(upsertPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		})
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         upsertPoints,
	})
	if err != nil {
		return fmt.Errorf("vectorstore: upsert into %q: %w", collection, err)
	}
	return nil
}

func toQdrantFilter(f *Filter) *qdrant.Filter {
	if f == nil {
		return nil
	}
	var must []*qdrant.Condition
	for field, val := range f.Equals {
		must = append(must, qdrant.NewMatch(field, fmt.Sprintf("%v", val)))
	}
	for field, vals := range f.AnyOf {
		strs := make([]string, len(vals))
		for i, v := range vals {
			strs[i] = fmt.Sprintf("%v", v)
		}
		must = append(must, qdrant.NewMatchKeywords(field, strs...))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func (q *Qdrant) Search(ctx context.Context, collection string, vector []float32, k int, scoreThreshold float64, filter *Filter) ([]Hit, error) {
	limit := uint64(k)
	threshold := float32(scoreThreshold)
	resp, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter:         toQdrantFilter(filter),
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search %q: %w", collection, err)
	}
	hits := make([]Hit, 0, len(resp))
	for _, pt := range resp {
		hits = append(hits, Hit{
			ID:      pointIDString(pt.Id),
			Score:   float64(pt.Score),
			Payload: fromQdrantPayload(pt.Payload),
		})
	}
	return hits, nil
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v.AsInterface()
	}
	return out
}

func (q *Qdrant) DeleteByIDs(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(id)
	}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: delete by id from %q: %w", collection, err)
	}
	return nil
}

func (q *Qdrant) DeleteByFilter(ctx context.Context, collection string, filter Filter) error {
	qf := toQdrantFilter(&filter)
	if qf == nil {
		return nil
	}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelectorFilter(qf),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: delete by filter from %q: %w", collection, err)
	}
	return nil
}

func (q *Qdrant) Clear(ctx context.Context, collection string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: clear %q: %w", collection, err)
	}
	return nil
}

func (q *Qdrant) Info(ctx context.Context, collection string) (Info, error) {
	info, err := q.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return Info{}, fmt.Errorf("vectorstore: info %q: %w", collection, err)
	}
	var dim int
	if params := info.GetConfig().GetParams().GetVectorsConfig().GetParams(); params != nil {
		dim = int(params.GetSize())
	}
	return Info{
		Name:      collection,
		Dimension: dim,
		Count:     int64(info.GetPointsCount()),
	}, nil
}

func (q *Qdrant) HealthCheck(ctx context.Context) error {
	if _, err := q.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("vectorstore: health check: %w", err)
	}
	return nil
}

func (q *Qdrant) Close() error {
	return q.client.Close()
}
