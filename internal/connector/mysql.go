package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"datacatalog/internal/models"
)

// MySQLConnector reads from a MySQL source over database/sql.
type MySQLConnector struct {
	db     *sql.DB
	schema string
}

func NewMySQLConnector(dsn, schema string) (*MySQLConnector, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql source: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql source: %w", err)
	}
	return &MySQLConnector{db: db, schema: schema}, nil
}

func (c *MySQLConnector) GetSchema(ctx context.Context) ([]models.TableSchema, error) {
	names, err := c.getTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]models.TableSchema, 0, len(names))
	for _, name := range names {
		table := models.TableSchema{Name: name}

		table.Columns, err = c.getColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for %s: %w", name, err)
		}
		table.PrimaryKeys, err = c.getPrimaryKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get primary keys for %s: %w", name, err)
		}
		table.ForeignKeys, err = c.getForeignKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get foreign keys for %s: %w", name, err)
		}
		table.Indexes, err = c.getUniqueIndexes(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get indexes for %s: %w", name, err)
		}

		tables = append(tables, table)
	}
	return tables, nil
}

func (c *MySQLConnector) getTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	rows, err := c.db.QueryContext(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *MySQLConnector) getColumns(ctx context.Context, table string) ([]models.Column, error) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE = 'YES'
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var col models.Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (c *MySQLConnector) getPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`
	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var pk string
		if err := rows.Scan(&pk); err != nil {
			return nil, err
		}
		pks = append(pks, pk)
	}
	return pks, rows.Err()
}

func (c *MySQLConnector) getForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error) {
	query := `
		SELECT CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
	`
	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []models.ForeignKey
	for rows.Next() {
		var fk models.ForeignKey
		if err := rows.Scan(&fk.ConstraintName, &fk.FromColumn, &fk.ToTable, &fk.ToColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (c *MySQLConnector) getUniqueIndexes(ctx context.Context, table string) ([]models.Index, error) {
	query := `
		SELECT INDEX_NAME, COLUMN_NAME
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			AND NON_UNIQUE = 0 AND INDEX_NAME != 'PRIMARY'
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`
	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]*models.Index)
	var order []string
	for rows.Next() {
		var index, column string
		if err := rows.Scan(&index, &column); err != nil {
			return nil, err
		}
		if idx, ok := byName[index]; ok {
			idx.Columns = append(idx.Columns, column)
		} else {
			byName[index] = &models.Index{Name: index, Columns: []string{column}, Unique: true}
			order = append(order, index)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]models.Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

func (c *MySQLConnector) GetSampleRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", c.QuoteIdentifier(table), limit)
	result, err := c.ExecuteQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}

func (c *MySQLConnector) ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (c *MySQLConnector) CountRows(ctx context.Context, table string) (int64, error) {
	// TABLE_ROWS is an estimate maintained by the storage engine
	query := `
		SELECT COALESCE(TABLE_ROWS, 0)
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
	`
	var count int64
	if err := c.db.QueryRowContext(ctx, query, c.schema, table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to estimate row count for %s: %w", table, err)
	}
	return count, nil
}

func (c *MySQLConnector) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (c *MySQLConnector) Close() error {
	return c.db.Close()
}

// scanRows reads every remaining row into a QueryResult, normalizing []byte
// values to strings so the documents serialize cleanly.
func scanRows(rows *sql.Rows) (*QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &QueryResult{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}
