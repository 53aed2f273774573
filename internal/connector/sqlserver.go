package connector

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"

	"datacatalog/internal/models"
)

// SQLServerConnector reads from a SQL Server source over database/sql.
type SQLServerConnector struct {
	db     *sql.DB
	schema string
}

func NewSQLServerConnector(dsn, schema string) (*SQLServerConnector, error) {
	if schema == "" {
		schema = "dbo"
	}
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlserver source: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlserver source: %w", err)
	}
	return &SQLServerConnector{db: db, schema: schema}, nil
}

func (c *SQLServerConnector) GetSchema(ctx context.Context) ([]models.TableSchema, error) {
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
		table.PrimaryKeys, err = c.getKeyColumns(ctx, name, "PRIMARY KEY")
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

func (c *SQLServerConnector) getTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
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

func (c *SQLServerConnector) getColumns(ctx context.Context, table string) ([]models.Column, error) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE,
			CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
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
		var nullable int
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (c *SQLServerConnector) getKeyColumns(ctx context.Context, table, constraintType string) ([]string, error) {
	query := `
		SELECT ku.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
			ON tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
		WHERE tc.CONSTRAINT_TYPE = @p1
			AND ku.TABLE_SCHEMA = @p2 AND ku.TABLE_NAME = @p3
		ORDER BY ku.ORDINAL_POSITION
	`
	rows, err := c.db.QueryContext(ctx, query, constraintType, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (c *SQLServerConnector) getForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error) {
	query := `
		SELECT
			fk.name,
			pc.name AS from_column,
			rt.name AS to_table,
			rc.name AS to_column
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
		JOIN sys.tables pt ON fkc.parent_object_id = pt.object_id
		JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id AND fkc.parent_column_id = pc.column_id
		JOIN sys.tables rt ON fkc.referenced_object_id = rt.object_id
		JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
		WHERE pt.name = @p1 AND SCHEMA_NAME(pt.schema_id) = @p2
	`
	rows, err := c.db.QueryContext(ctx, query, table, c.schema)
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

func (c *SQLServerConnector) getUniqueIndexes(ctx context.Context, table string) ([]models.Index, error) {
	query := `
		SELECT i.name, col.name
		FROM sys.indexes i
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns col ON ic.object_id = col.object_id AND ic.column_id = col.column_id
		JOIN sys.tables t ON i.object_id = t.object_id
		WHERE i.is_unique = 1 AND i.is_primary_key = 0
			AND t.name = @p1 AND SCHEMA_NAME(t.schema_id) = @p2
		ORDER BY i.name, ic.key_ordinal
	`
	rows, err := c.db.QueryContext(ctx, query, table, c.schema)
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

func (c *SQLServerConnector) GetSampleRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT TOP %d * FROM %s", limit, c.QuoteIdentifier(table))
	result, err := c.ExecuteQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}

func (c *SQLServerConnector) ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, translateSQLServerQuery(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (c *SQLServerConnector) CountRows(ctx context.Context, table string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(p.rows), 0)
		FROM sys.partitions p
		JOIN sys.tables t ON p.object_id = t.object_id
		WHERE t.name = @p1 AND SCHEMA_NAME(t.schema_id) = @p2 AND p.index_id IN (0, 1)
	`
	var count int64
	if err := c.db.QueryRowContext(ctx, query, table, c.schema).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to estimate row count for %s: %w", table, err)
	}
	return count, nil
}

func (c *SQLServerConnector) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (c *SQLServerConnector) Close() error {
	return c.db.Close()
}

var limitSuffix = regexp.MustCompile(`\sLIMIT (\d+)$`)

// translateSQLServerQuery adapts the engine's generated statement shape:
// a trailing "LIMIT n" becomes "TOP n" after SELECT, and '?' placeholders
// become @p1..@pn.
func translateSQLServerQuery(query string) string {
	if m := limitSuffix.FindStringSubmatch(query); m != nil {
		query = limitSuffix.ReplaceAllString(query, "")
		query = strings.Replace(query, "SELECT ", "SELECT TOP "+m[1]+" ", 1)
	}
	if !strings.ContainsRune(query, '?') {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteString("@p")
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
