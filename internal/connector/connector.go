package connector

import (
	"context"
	"fmt"

	"datacatalog/internal/models"
)

// QueryResult is the raw outcome of a parameterized query: column names in
// select order plus one value slice per row.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// RecordAt returns row i as a column-name keyed map.
func (r *QueryResult) RecordAt(i int) map[string]any {
	record := make(map[string]any, len(r.Columns))
	for j, col := range r.Columns {
		if j < len(r.Rows[i]) {
			record[col] = r.Rows[i][j]
		}
	}
	return record
}

// Records converts every row into a column-name keyed map, preserving order.
func (r *QueryResult) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for i := range r.Rows {
		records = append(records, r.RecordAt(i))
	}
	return records
}

// Connector abstracts one physical relational data source. The import engine
// depends only on this contract and never opens connections itself.
//
// Engine-generated SQL uses '?' placeholders for bound values; each
// implementation translates them to its driver's native form. Table and
// column names are interpolated only after passing through QuoteIdentifier.
type Connector interface {
	// GetSchema introspects every base table of the configured schema.
	GetSchema(ctx context.Context) ([]models.TableSchema, error)

	// GetSampleRows returns at most limit rows from the table. Order is
	// unspecified but stable within one call.
	GetSampleRows(ctx context.Context, table string, limit int) ([]map[string]any, error)

	// ExecuteQuery runs a parameterized read query.
	ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error)

	// CountRows estimates the number of rows in the table.
	CountRows(ctx context.Context, table string) (int64, error)

	// QuoteIdentifier escapes a table or column name for interpolation.
	QuoteIdentifier(name string) string

	// Close releases the underlying connection or pool.
	Close() error
}

// Supported source drivers.
const (
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLServer = "sqlserver"
)

// New opens a Connector for the given driver. The schema argument scopes
// introspection: for Postgres it defaults to "public", for MySQL it is the
// database name and is required.
func New(ctx context.Context, driver, dsn, schema string) (Connector, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresConnector(ctx, dsn, schema)
	case DriverMySQL:
		if schema == "" {
			return nil, fmt.Errorf("mysql source requires a schema (database) name")
		}
		return NewMySQLConnector(dsn, schema)
	case DriverSQLServer:
		return NewSQLServerConnector(dsn, schema)
	default:
		return nil, fmt.Errorf("unsupported source driver: %s", driver)
	}
}
