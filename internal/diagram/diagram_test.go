package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/models"
)

func sampleSchema() *models.RelationalSchema {
	return &models.RelationalSchema{
		PrimaryTable: "customers",
		Tables: map[string]models.TableSchema{
			"customers": {
				Name:        "customers",
				Columns:     []models.Column{{Name: "id", DataType: "integer"}, {Name: "name", DataType: "text"}},
				PrimaryKeys: []string{"id"},
			},
			"orders": {
				Name:        "orders",
				Columns:     []models.Column{{Name: "id", DataType: "integer"}, {Name: "customer_id", DataType: "integer"}},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []models.ForeignKey{{FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"}},
			},
		},
		Relationships: []models.Relationship{
			{FromTable: "orders", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id", Type: models.ManyToOne},
			{FromTable: "customers", FromColumn: "id", ToTable: "orders", ToColumn: "customer_id", Type: models.OneToMany},
		},
	}
}

func TestFormat(t *testing.T) {
	report := Format(sampleSchema())

	assert.True(t, strings.HasPrefix(report, "Primary table: customers\n"))
	assert.Contains(t, report, "Tables: 2")
	assert.Contains(t, report, "orders.customer_id --> customers.id (many-to-one)")
	assert.Contains(t, report, "customers.id ->> orders.customer_id (one-to-many)")
}

func TestFormat_EmptyRelationships(t *testing.T) {
	schema := sampleSchema()
	schema.Relationships = nil

	report := Format(schema)
	assert.Contains(t, report, "(none)")
}

func TestMermaid_SimplifiesMultiWordTypes(t *testing.T) {
	schema := sampleSchema()
	customers := schema.Tables["customers"]
	customers.Columns = append(customers.Columns,
		models.Column{Name: "created_at", DataType: "timestamp without time zone"},
		models.Column{Name: "updated_at", DataType: "timestamp with time zone"},
		models.Column{Name: "score", DataType: "double precision"},
		models.Column{Name: "notes", DataType: "character varying(255)"},
		models.Column{Name: "shape", DataType: "some exotic type"},
	)
	schema.Tables["customers"] = customers

	rendered := Mermaid(schema)

	assert.Contains(t, rendered, "timestamp created_at\n")
	assert.Contains(t, rendered, "timestamptz updated_at\n")
	assert.Contains(t, rendered, "double score\n")
	assert.Contains(t, rendered, "varchar notes\n")
	assert.Contains(t, rendered, "some_exotic_type shape\n")

	// Every attribute line must be a single type token plus a name,
	// optionally followed by key annotations.
	for _, line := range strings.Split(rendered, "\n") {
		if !strings.HasPrefix(line, "        ") {
			continue
		}
		fields := strings.Fields(line)
		require.GreaterOrEqual(t, len(fields), 2, "attribute line %q", line)
		for _, extra := range fields[2:] {
			assert.Contains(t, []string{"PK", "FK"}, extra, "attribute line %q", line)
		}
	}
}

func TestMermaid(t *testing.T) {
	rendered := Mermaid(sampleSchema())

	require.True(t, strings.HasPrefix(rendered, "erDiagram\n"))
	assert.Contains(t, rendered, `ORDERS }o--|| CUSTOMERS : ""`)
	assert.Contains(t, rendered, `CUSTOMERS ||--o{ ORDERS : ""`)
	assert.Contains(t, rendered, "CUSTOMERS {")
	assert.Contains(t, rendered, "int id PK")
	assert.Contains(t, rendered, "int customer_id FK")
}
