// Package diagram renders a RelationalSchema as human-readable reports.
package diagram

import (
	"fmt"
	"sort"
	"strings"

	"datacatalog/internal/models"
	"datacatalog/internal/utils"
)

// Format produces a line-oriented text report: the primary table, then one
// line per relationship in traversal order. One-to-many edges use a distinct
// arrow glyph so reverse expansion paths stand out.
func Format(schema *models.RelationalSchema) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Primary table: %s\n", schema.PrimaryTable))
	sb.WriteString(fmt.Sprintf("Tables: %d\n", len(schema.Tables)))
	sb.WriteString("Relationships:\n")

	if len(schema.Relationships) == 0 {
		sb.WriteString("  (none)\n")
		return sb.String()
	}

	for _, rel := range schema.Relationships {
		glyph := "-->"
		if rel.Type == models.OneToMany {
			glyph = "->>"
		}
		sb.WriteString(fmt.Sprintf("  %s.%s %s %s.%s (%s)\n",
			rel.FromTable, rel.FromColumn, glyph, rel.ToTable, rel.ToColumn, rel.Type))
	}
	return sb.String()
}

// Mermaid renders the schema as a Mermaid ER diagram for catalog UIs.
func Mermaid(schema *models.RelationalSchema) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	if len(schema.Relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range schema.Relationships {
			key := fmt.Sprintf("%s:%s:%s", rel.FromTable, rel.Type, rel.ToTable)
			if seen[key] {
				continue
			}
			seen[key] = true

			glyph := "}o--||"
			switch rel.Type {
			case models.OneToOne:
				glyph = "||--||"
			case models.OneToMany:
				glyph = "||--o{"
			case models.ManyToOne:
				glyph = "}o--||"
			}

			// Mermaid requires a label; an empty one hides it
			sb.WriteString(fmt.Sprintf("    %s %s %s : \"\"\n",
				strings.ToUpper(rel.FromTable), glyph, strings.ToUpper(rel.ToTable)))
		}
		sb.WriteString("\n")
	}

	names := make([]string, 0, len(schema.Tables))
	for name := range schema.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		table := schema.Tables[name]
		sb.WriteString(fmt.Sprintf("    %s {\n", strings.ToUpper(table.Name)))
		for _, col := range table.Columns {
			annotations := ""
			if utils.Contains(table.PrimaryKeys, col.Name) {
				annotations = " PK"
			}
			if isForeignKey(table.ForeignKeys, col.Name) {
				annotations += " FK"
			}
			sb.WriteString(fmt.Sprintf("        %s %s%s\n", simplifyDataType(col.DataType), col.Name, annotations))
		}
		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

// simplifyDataType maps verbose SQL type names to the single-token form the
// Mermaid attribute grammar requires.
func simplifyDataType(dataType string) string {
	dt := strings.ToLower(dataType)

	switch {
	case dt == "integer":
		return "int"
	case dt == "bigint":
		return "bigint"
	case dt == "smallint":
		return "smallint"
	case strings.HasPrefix(dt, "character varying"):
		return "varchar"
	case strings.HasPrefix(dt, "character"):
		return "char"
	case dt == "text":
		return "text"
	case strings.HasPrefix(dt, "timestamp without time zone"):
		return "timestamp"
	case strings.HasPrefix(dt, "timestamp with time zone"):
		return "timestamptz"
	case strings.HasPrefix(dt, "time without time zone"):
		return "time"
	case dt == "date":
		return "date"
	case dt == "boolean":
		return "boolean"
	case strings.HasPrefix(dt, "numeric"):
		return "numeric"
	case strings.HasPrefix(dt, "decimal"):
		return "decimal"
	case dt == "real":
		return "real"
	case dt == "double precision":
		return "double"
	case dt == "json":
		return "json"
	case dt == "jsonb":
		return "jsonb"
	case dt == "uuid":
		return "uuid"
	case dt == "bytea":
		return "bytea"
	case strings.HasPrefix(dt, "array"):
		return "array"
	default:
		// Unknown types must still be one token.
		return strings.ReplaceAll(dataType, " ", "_")
	}
}

func isForeignKey(fks []models.ForeignKey, column string) bool {
	for _, fk := range fks {
		if fk.FromColumn == column {
			return true
		}
	}
	return false
}
