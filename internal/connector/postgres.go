package connector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"datacatalog/internal/models"
)

// PostgresConnector reads from a PostgreSQL source through a pgx pool.
type PostgresConnector struct {
	pool   *pgxpool.Pool
	schema string
}

func NewPostgresConnector(ctx context.Context, dsn, schema string) (*PostgresConnector, error) {
	if schema == "" {
		schema = "public"
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}

	return &PostgresConnector{pool: pool, schema: schema}, nil
}

func (c *PostgresConnector) GetSchema(ctx context.Context) ([]models.TableSchema, error) {
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
			return nil, fmt.Errorf("failed to get unique constraints for %s: %w", name, err)
		}

		tables = append(tables, table)
	}
	return tables, nil
}

func (c *PostgresConnector) getTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.pool.Query(ctx, query, c.schema)
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

func (c *PostgresConnector) getColumns(ctx context.Context, table string) ([]models.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := c.pool.Query(ctx, query, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var col models.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (c *PostgresConnector) getPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := c.pool.Query(ctx, query, c.schema, table)
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

func (c *PostgresConnector) getForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
	`

	rows, err := c.pool.Query(ctx, query, c.schema, table)
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

func (c *PostgresConnector) getUniqueIndexes(ctx context.Context, table string) ([]models.Index, error) {
	query := `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'UNIQUE'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := c.pool.Query(ctx, query, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]*models.Index)
	var order []string
	for rows.Next() {
		var constraint, column string
		if err := rows.Scan(&constraint, &column); err != nil {
			return nil, err
		}
		if idx, ok := byName[constraint]; ok {
			idx.Columns = append(idx.Columns, column)
		} else {
			byName[constraint] = &models.Index{Name: constraint, Columns: []string{column}, Unique: true}
			order = append(order, constraint)
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

func (c *PostgresConnector) GetSampleRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", c.QuoteIdentifier(table), limit)
	result, err := c.ExecuteQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}

func (c *PostgresConnector) ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	rows, err := c.pool.Query(ctx, translatePostgresPlaceholders(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	result := &QueryResult{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

func (c *PostgresConnector) CountRows(ctx context.Context, table string) (int64, error) {
	// reltuples is an estimate; exact counts can be prohibitive on large tables
	query := `
		SELECT COALESCE(c.reltuples::bigint, 0)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
	`
	var count int64
	if err := c.pool.QueryRow(ctx, query, c.schema, table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to estimate row count for %s: %w", table, err)
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}

func (c *PostgresConnector) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (c *PostgresConnector) Close() error {
	c.pool.Close()
	return nil
}

// translatePostgresPlaceholders rewrites the engine's '?' placeholders to
// $1..$n. Engine-generated statements never contain a literal question mark.
func translatePostgresPlaceholders(query string) string {
	if !strings.ContainsRune(query, '?') {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
