package importer

import (
	"context"
	"fmt"
	"log"

	"datacatalog/internal/connector"
	"datacatalog/internal/models"
)

const (
	// Reverse (one-to-many) hops never expand past this depth, whatever the
	// requested max depth: reverse edges are the main source of fan-out.
	reverseDepthCap = 2

	// Row caps for one-to-many fetches: generous at the root record, tight
	// for anything deeper.
	rootListCap   = 100
	nestedListCap = 10
)

// visitedSet tracks "<table>_<pk>" keys along the current traversal path.
// It is copied on descent so sibling branches never observe each other;
// only a record containing itself (a true cycle) is cut.
type visitedSet map[string]struct{}

func (v visitedSet) has(key string) bool {
	_, ok := v[key]
	return ok
}

func (v visitedSet) with(key string) visitedSet {
	branch := make(visitedSet, len(v)+1)
	for k := range v {
		branch[k] = struct{}{}
	}
	branch[key] = struct{}{}
	return branch
}

// nestedRecordBuilder expands one root row into a nested document by
// recursively resolving relationship edges against the live source.
type nestedRecordBuilder struct {
	conn     connector.Connector
	schema   *models.RelationalSchema
	maxDepth int
}

func newNestedRecordBuilder(conn connector.Connector, schema *models.RelationalSchema, maxDepth int) *nestedRecordBuilder {
	return &nestedRecordBuilder{conn: conn, schema: schema, maxDepth: maxDepth}
}

// build returns either a models.NestedRecord (expanded) or a models.Reference
// (stub) when the depth limit is reached or the record is already on the
// current path. fromReverse marks that the edge just followed was one-to-many.
func (b *nestedRecordBuilder) build(ctx context.Context, table string, record map[string]any, depth int, visited visitedSet, fromReverse bool) any {
	pk := b.schema.PrimaryKeyColumn(table)
	recordKey := fmt.Sprintf("%s_%v", table, record[pk])

	effectiveMaxDepth := b.maxDepth
	if fromReverse && effectiveMaxDepth > reverseDepthCap {
		effectiveMaxDepth = reverseDepthCap
	}

	if depth >= effectiveMaxDepth || visited.has(recordKey) || ctx.Err() != nil {
		return models.Reference{Table: table, KeyName: pk, KeyValue: record[pk]}
	}

	branch := visited.with(recordKey)

	result := make(models.NestedRecord, len(record)+4)
	for k, v := range record {
		result[k] = v
	}

	for _, rel := range b.schema.Relationships {
		if rel.FromTable != table {
			continue
		}
		// A reverse hop may not chain straight into another reverse hop.
		if fromReverse && rel.Type == models.OneToMany {
			continue
		}
		value, ok := record[rel.FromColumn]
		if !ok || value == nil {
			continue
		}

		switch rel.Type {
		case models.ManyToOne, models.OneToOne:
			related, err := b.fetchRelated(ctx, rel.ToTable, rel.ToColumn, value, 1)
			if err != nil {
				log.Printf("import: skipping relation %s.%s -> %s: %v", rel.FromTable, rel.FromColumn, rel.ToTable, err)
				continue
			}
			if len(related) == 0 {
				continue
			}
			result[models.RelatedKey(rel.ToTable)] = b.build(ctx, rel.ToTable, related[0], depth+1, branch, false)

		case models.OneToMany:
			rowCap := nestedListCap
			if depth == 0 {
				rowCap = rootListCap
			}
			related, err := b.fetchRelated(ctx, rel.ToTable, rel.ToColumn, value, rowCap)
			if err != nil {
				log.Printf("import: skipping relation %s.%s -> %s: %v", rel.FromTable, rel.FromColumn, rel.ToTable, err)
				continue
			}
			if len(related) == 0 {
				continue
			}
			children := make([]any, 0, len(related))
			for _, row := range related {
				children = append(children, b.build(ctx, rel.ToTable, row, depth+1, branch, true))
			}
			result[models.RelatedListKey(rel.ToTable)] = children
			if len(related) == rowCap {
				// The fetch filled its cap, so more rows likely exist.
				result[models.RelatedCountKey(rel.ToTable)] = fmt.Sprintf("%d+", rowCap)
			}
		}
	}

	return result
}

// fetchRelated issues the equality-filtered SELECT for one relationship edge.
// Identifiers go through the connector's quoting; the value is always bound.
func (b *nestedRecordBuilder) fetchRelated(ctx context.Context, table, column string, value any, limit int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT %d",
		b.conn.QuoteIdentifier(table), b.conn.QuoteIdentifier(column), limit)
	result, err := b.conn.ExecuteQuery(ctx, query, value)
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}
