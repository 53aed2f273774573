package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceMarshalJSON(t *testing.T) {
	ref := Reference{Table: "customers", KeyName: "id", KeyValue: 42}

	data, err := json.Marshal(ref)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "customers", decoded["_ref"])
	assert.Equal(t, float64(42), decoded["id"])
}

func TestRelationKeysCannotCollideWithColumns(t *testing.T) {
	// Plain SQL column names never carry the underscore relation prefix
	// scheme used here, and the three keys for one table are distinct.
	assert.Equal(t, "_orders", RelatedKey("orders"))
	assert.Equal(t, "_orders_list", RelatedListKey("orders"))
	assert.Equal(t, "_orders_count", RelatedCountKey("orders"))
}

func TestImportOptionsDefaultsAndValidation(t *testing.T) {
	opts := ImportOptions{PrimaryTable: "customers"}
	opts.ApplyDefaults()
	assert.Equal(t, DefaultMaxDepth, opts.MaxDepth)
	assert.Equal(t, DefaultMaxRecords, opts.MaxRecords)
	assert.NoError(t, opts.Validate())

	missing := ImportOptions{}
	assert.Error(t, missing.Validate())
}

func TestPrimaryKeyColumnFallsBackToID(t *testing.T) {
	schema := &RelationalSchema{
		Tables: map[string]TableSchema{
			"events": {Name: "events"},
			"users":  {Name: "users", PrimaryKeys: []string{"user_id", "tenant_id"}},
		},
	}

	assert.Equal(t, "id", schema.PrimaryKeyColumn("events"))
	assert.Equal(t, "user_id", schema.PrimaryKeyColumn("users"))
	assert.Equal(t, "id", schema.PrimaryKeyColumn("unknown"))
}
