package importer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"datacatalog/internal/analyzer"
	"datacatalog/internal/connector"
	"datacatalog/internal/models"
)

// ErrPrimaryTableNotFound is returned when the requested primary table is not
// part of the analyzed schema (missing from the source or filtered out).
var ErrPrimaryTableNotFound = errors.New("primary table not found in source schema")

// RelationalImporter materializes sampled rows of the primary table into
// nested documents by walking the relationship graph.
type RelationalImporter struct {
	conn     connector.Connector
	analyzer *analyzer.SchemaAnalyzer
}

func NewRelationalImporter(conn connector.Connector) *RelationalImporter {
	return &RelationalImporter{
		conn:     conn,
		analyzer: analyzer.NewSchemaAnalyzer(conn),
	}
}

// Import analyzes the schema, samples up to MaxRecords rows from the primary
// table and expands each into a nested document. Result order follows the
// sampled row order. Per-edge fetch failures are recovered inside the
// expansion; schema and sampling failures abort the whole run.
func (i *RelationalImporter) Import(ctx context.Context, opts models.ImportOptions) ([]models.NestedRecord, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	schema, err := i.analyzer.Analyze(ctx, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := schema.Tables[opts.PrimaryTable]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrimaryTableNotFound, opts.PrimaryTable)
	}

	rows, err := i.conn.GetSampleRows(ctx, opts.PrimaryTable, opts.MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to sample rows from %s: %w", opts.PrimaryTable, err)
	}

	runID := uuid.New()
	log.Printf("import %s: %s, %d root records, %d relationships", runID, opts.PrimaryTable, len(rows), len(schema.Relationships))

	builder := newNestedRecordBuilder(i.conn, schema, opts.MaxDepth)

	records := make([]models.NestedRecord, 0, len(rows))
	for _, row := range rows {
		// Abandon cleanly on cancellation; only completed builds are kept.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Cycle tracking starts fresh for every root record.
		doc := builder.build(ctx, opts.PrimaryTable, row, 0, visitedSet{}, false)
		record, ok := doc.(models.NestedRecord)
		if !ok {
			// A zero max depth leaves only the stub fields.
			ref := doc.(models.Reference)
			record = models.NestedRecord{ref.KeyName: ref.KeyValue, "_ref": ref.Table}
		}
		records = append(records, record)
	}

	log.Printf("import %s: done, %d documents", runID, len(records))
	return records, nil
}
