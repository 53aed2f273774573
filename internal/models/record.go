package models

import "encoding/json"

// NestedRecord is one denormalized document produced by the import engine:
// the columns of a source row plus, under relation keys, the expanded related
// rows. Relation keys carry an underscore prefix so they can never collide
// with a real column name.
type NestedRecord map[string]any

// Reference is the stub stored in place of a record when expansion is cut off
// by the depth limit or by cycle detection. It keeps just enough to identify
// the record it stands for.
type Reference struct {
	Table    string
	KeyName  string
	KeyValue any
}

// MarshalJSON renders the stub as {"<pk>": value, "_ref": table}, which is
// the shape downstream catalog consumers expect.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		r.KeyName: r.KeyValue,
		"_ref":    r.Table,
	})
}

// RelatedKey is the field under which a single related record (to-one) is
// embedded.
func RelatedKey(table string) string {
	return "_" + table
}

// RelatedListKey is the field under which related records of a to-many edge
// are embedded.
func RelatedListKey(table string) string {
	return "_" + table + "_list"
}

// RelatedCountKey holds the "<cap>+" marker written when a to-many fetch was
// truncated at its row cap.
func RelatedCountKey(table string) string {
	return "_" + table + "_count"
}
