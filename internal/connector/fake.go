package connector

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"datacatalog/internal/models"
)

// FakeConnector is an in-memory Connector for tests. It serves a fixed set
// of table schemas and rows, understands the equality-filtered SELECT shape
// the import engine generates, and records every executed query.
type FakeConnector struct {
	Tables []models.TableSchema
	Data   map[string][]map[string]any

	// FailTables maps a table name to an error returned for any fetch
	// against it, to exercise per-edge recovery.
	FailTables map[string]error

	// SchemaErr, if set, is returned from GetSchema.
	SchemaErr error

	Queries []string
	Closed  bool
}

var fakeSelect = regexp.MustCompile(`^SELECT \* FROM "([^"]+)" WHERE "([^"]+)" = \? LIMIT (\d+)$`)

func (f *FakeConnector) GetSchema(ctx context.Context) ([]models.TableSchema, error) {
	if f.SchemaErr != nil {
		return nil, f.SchemaErr
	}
	return f.Tables, nil
}

func (f *FakeConnector) GetSampleRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if err := f.FailTables[table]; err != nil {
		return nil, err
	}
	rows := f.Data[table]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *FakeConnector) ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	f.Queries = append(f.Queries, query)

	m := fakeSelect.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("fake connector cannot parse query: %s", query)
	}
	table, column := m[1], m[2]
	limit, _ := strconv.Atoi(m[3])

	if err := f.FailTables[table]; err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one bound value, got %d", len(args))
	}

	columns := f.columnNames(table)
	result := &QueryResult{Columns: columns}
	for _, row := range f.Data[table] {
		if fmt.Sprint(row[column]) != fmt.Sprint(args[0]) {
			continue
		}
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = row[col]
		}
		result.Rows = append(result.Rows, values)
		if len(result.Rows) == limit {
			break
		}
	}
	return result, nil
}

func (f *FakeConnector) CountRows(ctx context.Context, table string) (int64, error) {
	return int64(len(f.Data[table])), nil
}

func (f *FakeConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (f *FakeConnector) Close() error {
	f.Closed = true
	return nil
}

func (f *FakeConnector) columnNames(table string) []string {
	for _, t := range f.Tables {
		if t.Name == table {
			names := make([]string, len(t.Columns))
			for i, c := range t.Columns {
				names[i] = c.Name
			}
			return names
		}
	}
	return nil
}
