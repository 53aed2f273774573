package models

type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

type ForeignKey struct {
	ConstraintName string `json:"constraint_name"`
	FromColumn     string `json:"from_column"`
	ToTable        string `json:"to_table"`
	ToColumn       string `json:"to_column"`
}

type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// TableSchema is one table as reported by the source database. Owned by the
// Connector that produced it; the import engine treats it as read-only.
type TableSchema struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKeys []string     `json:"primary_keys"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Indexes     []Index      `json:"indexes,omitempty"`
}

// RelationType classifies a relationship edge. The traversal switches on it
// exhaustively, so new values must be handled in the record builder.
type RelationType string

const (
	OneToOne  RelationType = "one-to-one"
	OneToMany RelationType = "one-to-many"
	ManyToOne RelationType = "many-to-one"
)

// Relationship is a directed edge between two tables, derived from a foreign
// key constraint (or synthesized as the reverse of one).
type Relationship struct {
	FromTable  string       `json:"from_table"`
	FromColumn string       `json:"from_column"`
	ToTable    string       `json:"to_table"`
	ToColumn   string       `json:"to_column"`
	Type       RelationType `json:"type"`
}

// RelationalSchema is the filtered table map plus the relationship edges for
// one import run. Built once per request and immutable afterwards.
type RelationalSchema struct {
	Tables        map[string]TableSchema `json:"tables"`
	Relationships []Relationship         `json:"relationships"`
	PrimaryTable  string                 `json:"primary_table"`
}

// PrimaryKeyColumn returns the first declared primary-key column of a table,
// falling back to "id" when the table declares none.
func (s *RelationalSchema) PrimaryKeyColumn(table string) string {
	if t, ok := s.Tables[table]; ok && len(t.PrimaryKeys) > 0 {
		return t.PrimaryKeys[0]
	}
	return "id"
}
