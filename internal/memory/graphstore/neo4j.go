package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jConfig configures a connection to a Neo4j instance, populated
// from NEO4J_URI/NEO4J_USERNAME/NEO4J_PASSWORD.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
}

// Neo4j implements Store against a real Neo4j server via Cypher.
type Neo4j struct {
	driver neo4j.DriverWithContext
}

var _ Store = (*Neo4j)(nil)

// NewNeo4j dials the configured Neo4j instance.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("graphstore: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("graphstore: verify connectivity: %w", err)
	}
	return &Neo4j{driver: driver}, nil
}

func (n *Neo4j) UpsertEntity(ctx context.Context, e Entity) error {
	_, err := neo4j.ExecuteQuery(ctx, n.driver, `
		MERGE (e:Entity {name: $name})
		ON CREATE SET e.id = $id, e.entity_type = $entity_type, e.frequency = 1, e.properties = $properties
		ON MATCH SET e.frequency = coalesce(e.frequency, 0) + 1, e.properties = $properties
	`, map[string]any{
		"name":        e.Name,
		"id":          e.ID,
		"entity_type": e.EntityType,
		"properties":  e.Properties,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase("neo4j"))
	if err != nil {
		return fmt.Errorf("graphstore: upsert entity %q: %w", e.Name, err)
	}
	return nil
}

func (n *Neo4j) UpsertRelation(ctx context.Context, r Relation) error {
	_, err := neo4j.ExecuteQuery(ctx, n.driver, `
		MERGE (a:Entity {name: $from})
		MERGE (b:Entity {name: $to})
		MERGE (a)-[rel:RELATES {type: $relation_type}]->(b)
		SET rel.properties = $properties
	`, map[string]any{
		"from":          r.From,
		"to":            r.To,
		"relation_type": r.RelationType,
		"properties":    r.Properties,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase("neo4j"))
	if err != nil {
		return fmt.Errorf("graphstore: upsert relation %s-%s->%s: %w", r.From, r.RelationType, r.To, err)
	}
	return nil
}

// FindRelated traverses outward from name using a variable-length,
// undirected RELATES pattern bounded by maxDepth, ordering by hop
// count so the nearest neighbors come first.
func (n *Neo4j) FindRelated(ctx context.Context, name string, maxDepth, limit int) ([]Related, error) {
	result, err := neo4j.ExecuteQuery(ctx, n.driver, fmt.Sprintf(`
		MATCH path = (start:Entity {name: $name})-[:RELATES*1..%d]-(other:Entity)
		WHERE other.name <> $name
		WITH other, path, length(path) AS dist
		ORDER BY dist ASC
		LIMIT $limit
		RETURN other, dist, [r IN relationships(path) | r.type] AS rel_path
	`, maxDepth), map[string]any{
		"name":  name,
		"limit": limit,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase("neo4j"))
	if err != nil {
		return nil, fmt.Errorf("graphstore: find related to %q: %w", name, err)
	}

	related := make([]Related, 0, len(result.Records))
	for _, record := range result.Records {
		node, _, err := neo4j.GetRecordValue[neo4j.Node](record, "other")
		if err != nil {
			continue
		}
		dist, _, _ := neo4j.GetRecordValue[int64](record, "dist")
		pathVal, _, _ := neo4j.GetRecordValue[[]any](record, "rel_path")
		relPath := make([]string, 0, len(pathVal))
		for _, v := range pathVal {
			if s, ok := v.(string); ok {
				relPath = append(relPath, s)
			}
		}
		related = append(related, Related{
			Entity:           entityFromNode(node),
			Distance:         int(dist),
			RelationshipPath: relPath,
		})
	}
	return related, nil
}

func entityFromNode(node neo4j.Node) Entity {
	props := node.Props
	e := Entity{Properties: map[string]any{}}
	if v, ok := props["name"].(string); ok {
		e.Name = v
	}
	if v, ok := props["id"].(string); ok {
		e.ID = v
	}
	if v, ok := props["entity_type"].(string); ok {
		e.EntityType = v
	}
	if v, ok := props["properties"].(map[string]any); ok {
		e.Properties = v
	}
	return e
}

func (n *Neo4j) SearchEntities(ctx context.Context, pattern, entityType string, limit int) ([]Entity, error) {
	query := `
		MATCH (e:Entity)
		WHERE toLower(e.name) CONTAINS toLower($pattern)
		  AND ($entity_type = '' OR e.entity_type = $entity_type)
		RETURN e
		LIMIT $limit
	`
	result, err := neo4j.ExecuteQuery(ctx, n.driver, query, map[string]any{
		"pattern":     pattern,
		"entity_type": entityType,
		"limit":       limit,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase("neo4j"))
	if err != nil {
		return nil, fmt.Errorf("graphstore: search entities %q: %w", pattern, err)
	}
	entities := make([]Entity, 0, len(result.Records))
	for _, record := range result.Records {
		node, _, err := neo4j.GetRecordValue[neo4j.Node](record, "e")
		if err != nil {
			continue
		}
		entities = append(entities, entityFromNode(node))
	}
	return entities, nil
}

func (n *Neo4j) HealthCheck(ctx context.Context) error {
	if err := n.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graphstore: health check: %w", err)
	}
	return nil
}

func (n *Neo4j) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}
