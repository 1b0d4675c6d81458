// Package tableset models how one named dataset is materialized across H3
// resolutions in the columnar database: which resolutions exist as dense
// base tables or sparse compacted tables, how physical table names are
// derived, and how a query resolution maps onto the minimal set of physical
// reads.
package tableset

import (
	"fmt"
	"regexp"
	"strconv"
)

// TableKind distinguishes the two physical table layouts.
type TableKind string

const (
	// KindBase marks a dense table: one row per cell at exactly the
	// table's resolution.
	KindBase TableKind = "base"
	// KindCompacted marks a sparse table holding the compacted,
	// mixed-resolution form of the dataset at the table's resolution.
	KindCompacted TableKind = "compacted"
)

// TableSpec identifies one physical table of a dataset. Constructed once
// when a schema is loaded and immutable thereafter.
type TableSpec struct {
	Resolution int       `json:"resolution" yaml:"resolution"`
	Kind       TableKind `json:"kind" yaml:"kind"`

	// TemporaryKey marks ingestion-time tables that exist only while new
	// data is being written and merged.
	TemporaryKey string `json:"temporary_key,omitempty" yaml:"temporary_key,omitempty"`
}

// IsTemporary reports whether this describes an ingestion-time table.
func (s TableSpec) IsTemporary() bool {
	return s.TemporaryKey != ""
}

// Table is a TableSpec bound to a dataset basename.
type Table struct {
	Basename string    `json:"basename" yaml:"basename"`
	Spec     TableSpec `json:"spec" yaml:"spec"`
}

// Name derives the physical table name: basename, zero-padded resolution and
// kind suffix, e.g. "water_05_base", plus a "_tmp" suffix for temporary
// ingestion tables.
func (t Table) Name() string {
	name := fmt.Sprintf("%s_%02d_%s", t.Basename, t.Spec.Resolution, t.Spec.Kind)
	if t.Spec.IsTemporary() {
		name += "_tmp" + t.Spec.TemporaryKey
	}
	return name
}

func (t Table) String() string {
	return t.Name()
}

var tableNameRe = regexp.MustCompile(
	`^([a-zA-Z][a-zA-Z_0-9]*)_([0-9]{2})_(base|compacted)(?:_tmp([a-zA-Z0-9_]+))?$`,
)

// ParseTableName decodes a physical table name back into a Table. The
// second return value is false for names outside the naming scheme.
func ParseTableName(name string) (Table, bool) {
	captures := tableNameRe.FindStringSubmatch(name)
	if captures == nil {
		return Table{}, false
	}
	resolution, err := strconv.Atoi(captures[2])
	if err != nil {
		return Table{}, false
	}
	return Table{
		Basename: captures[1],
		Spec: TableSpec{
			Resolution:   resolution,
			Kind:         TableKind(captures[3]),
			TemporaryKey: captures[4],
		},
	}, true
}
