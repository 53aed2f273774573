package models

import "errors"

const (
	DefaultMaxDepth   = 3
	DefaultMaxRecords = 100
)

// ImportOptions controls one schema analysis or import run.
type ImportOptions struct {
	PrimaryTable   string   `json:"primary_table" yaml:"primaryTable"`
	MaxDepth       int      `json:"max_depth" yaml:"maxDepth"`
	MaxRecords     int      `json:"max_records" yaml:"maxRecords"`
	IncludedTables []string `json:"included_tables" yaml:"includedTables"`
	ExcludedTables []string `json:"excluded_tables" yaml:"excludedTables"`
	FollowReverse  bool     `json:"follow_reverse" yaml:"followReverse"`
}

// ApplyDefaults fills in zero-valued limits.
func (o *ImportOptions) ApplyDefaults() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxRecords <= 0 {
		o.MaxRecords = DefaultMaxRecords
	}
}

func (o *ImportOptions) Validate() error {
	if o.PrimaryTable == "" {
		return errors.New("primary table is required")
	}
	return nil
}
