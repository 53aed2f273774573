package analyzer

import (
	"context"
	"fmt"

	"datacatalog/internal/connector"
	"datacatalog/internal/models"
	"datacatalog/internal/utils"
)

// SchemaAnalyzer turns raw schema introspection plus import options into a
// RelationalSchema: a filtered table map and a directed relationship list.
type SchemaAnalyzer struct {
	conn connector.Connector
}

func NewSchemaAnalyzer(conn connector.Connector) *SchemaAnalyzer {
	return &SchemaAnalyzer{conn: conn}
}

// Analyze builds the relationship graph for one import run. It is pure given
// a schema snapshot: no queries beyond the introspection call, no writes.
func (a *SchemaAnalyzer) Analyze(ctx context.Context, opts models.ImportOptions) (*models.RelationalSchema, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	all, err := a.conn.GetSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect source schema: %w", err)
	}

	// Deny-list first, then allow-list. The filtered slice keeps the
	// connector's ordering so the relationship list is deterministic.
	var kept []models.TableSchema
	tables := make(map[string]models.TableSchema)
	for _, table := range all {
		if utils.Contains(opts.ExcludedTables, table.Name) {
			continue
		}
		if len(opts.IncludedTables) > 0 && !utils.Contains(opts.IncludedTables, table.Name) {
			continue
		}
		kept = append(kept, table)
		tables[table.Name] = table
	}

	var relationships []models.Relationship
	for _, table := range kept {
		for _, fk := range table.ForeignKeys {
			// Edges into filtered-out tables are dropped, never left dangling.
			if _, ok := tables[fk.ToTable]; !ok {
				continue
			}

			relType := models.ManyToOne
			if hasUniqueIndexOn(table, fk.FromColumn) {
				relType = models.OneToOne
			}
			relationships = append(relationships, models.Relationship{
				FromTable:  table.Name,
				FromColumn: fk.FromColumn,
				ToTable:    fk.ToTable,
				ToColumn:   fk.ToColumn,
				Type:       relType,
			})

			if opts.FollowReverse {
				relationships = append(relationships, models.Relationship{
					FromTable:  fk.ToTable,
					FromColumn: fk.ToColumn,
					ToTable:    table.Name,
					ToColumn:   fk.FromColumn,
					Type:       models.OneToMany,
				})
			}
		}
	}

	return &models.RelationalSchema{
		Tables:        tables,
		Relationships: relationships,
		PrimaryTable:  opts.PrimaryTable,
	}, nil
}

// hasUniqueIndexOn reports whether the column carries a single-column unique
// index, which upgrades its foreign key from many-to-one to one-to-one.
func hasUniqueIndexOn(table models.TableSchema, column string) bool {
	for _, idx := range table.Indexes {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == column {
			return true
		}
	}
	return false
}
