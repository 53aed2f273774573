package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/connector"
	"datacatalog/internal/models"
)

func shopTables() []models.TableSchema {
	return []models.TableSchema{
		{
			Name: "customers",
			Columns: []models.Column{
				{Name: "id", DataType: "integer"},
				{Name: "name", DataType: "text", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
		},
		{
			Name: "orders",
			Columns: []models.Column{
				{Name: "id", DataType: "integer"},
				{Name: "customer_id", DataType: "integer", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []models.ForeignKey{
				{ConstraintName: "orders_customer_id_fkey", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"},
			},
		},
		{
			Name: "profiles",
			Columns: []models.Column{
				{Name: "id", DataType: "integer"},
				{Name: "customer_id", DataType: "integer"},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []models.ForeignKey{
				{ConstraintName: "profiles_customer_id_fkey", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"},
			},
			Indexes: []models.Index{
				{Name: "profiles_customer_id_key", Columns: []string{"customer_id"}, Unique: true},
			},
		},
	}
}

func TestAnalyze_ForwardRelationships(t *testing.T) {
	conn := &connector.FakeConnector{Tables: shopTables()}
	a := NewSchemaAnalyzer(conn)

	schema, err := a.Analyze(context.Background(), models.ImportOptions{PrimaryTable: "customers"})
	require.NoError(t, err)

	assert.Len(t, schema.Tables, 3)
	assert.Equal(t, "customers", schema.PrimaryTable)

	require.Len(t, schema.Relationships, 2)
	for _, rel := range schema.Relationships {
		assert.NotEqual(t, models.OneToMany, rel.Type, "no reverse edges without FollowReverse")
	}
}

func TestAnalyze_NoDanglingEdges(t *testing.T) {
	conn := &connector.FakeConnector{Tables: shopTables()}
	a := NewSchemaAnalyzer(conn)

	schema, err := a.Analyze(context.Background(), models.ImportOptions{
		PrimaryTable:   "orders",
		ExcludedTables: []string{"customers"},
	})
	require.NoError(t, err)

	_, ok := schema.Tables["customers"]
	assert.False(t, ok)
	assert.Empty(t, schema.Relationships, "edges into excluded tables must be dropped")
	for _, rel := range schema.Relationships {
		_, ok := schema.Tables[rel.ToTable]
		assert.True(t, ok)
	}
}

func TestAnalyze_IncludedTablesAllowList(t *testing.T) {
	conn := &connector.FakeConnector{Tables: shopTables()}
	a := NewSchemaAnalyzer(conn)

	schema, err := a.Analyze(context.Background(), models.ImportOptions{
		PrimaryTable:   "orders",
		IncludedTables: []string{"orders", "customers"},
	})
	require.NoError(t, err)

	assert.Len(t, schema.Tables, 2)
	require.Len(t, schema.Relationships, 1)
	assert.Equal(t, "orders", schema.Relationships[0].FromTable)
	assert.Equal(t, "customers", schema.Relationships[0].ToTable)
}

func TestAnalyze_FollowReverseMirrorsEdges(t *testing.T) {
	conn := &connector.FakeConnector{Tables: shopTables()}
	a := NewSchemaAnalyzer(conn)

	schema, err := a.Analyze(context.Background(), models.ImportOptions{
		PrimaryTable:  "customers",
		FollowReverse: true,
	})
	require.NoError(t, err)

	var reverse []models.Relationship
	for _, rel := range schema.Relationships {
		if rel.Type == models.OneToMany {
			reverse = append(reverse, rel)
		}
	}
	require.Len(t, reverse, 2)
	for _, rel := range reverse {
		assert.Equal(t, "customers", rel.FromTable)
		assert.Equal(t, "id", rel.FromColumn)
	}
}

func TestAnalyze_UniqueColumnUpgradesToOneToOne(t *testing.T) {
	conn := &connector.FakeConnector{Tables: shopTables()}
	a := NewSchemaAnalyzer(conn)

	schema, err := a.Analyze(context.Background(), models.ImportOptions{PrimaryTable: "customers"})
	require.NoError(t, err)

	types := make(map[string]models.RelationType)
	for _, rel := range schema.Relationships {
		types[rel.FromTable] = rel.Type
	}
	assert.Equal(t, models.ManyToOne, types["orders"])
	assert.Equal(t, models.OneToOne, types["profiles"])
}

func TestAnalyze_RequiresPrimaryTable(t *testing.T) {
	conn := &connector.FakeConnector{Tables: shopTables()}
	a := NewSchemaAnalyzer(conn)

	_, err := a.Analyze(context.Background(), models.ImportOptions{})
	require.Error(t, err)
}

func TestAnalyze_IntrospectionErrorSurfaces(t *testing.T) {
	conn := &connector.FakeConnector{SchemaErr: fmt.Errorf("connection refused")}
	a := NewSchemaAnalyzer(conn)

	_, err := a.Analyze(context.Background(), models.ImportOptions{PrimaryTable: "customers"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
