package tableset

import (
	"sort"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/h3res"
)

// TableSet is the schema-level view of one dataset: the resolutions it
// materializes as base tables and as compacted tables, and the data columns
// shared by all of its tables. TableSets are plain records built once, from
// a schema declaration or by database discovery, and treated as immutable
// for the lifetime of a query session; concurrent reads need no
// synchronization.
type TableSet struct {
	Basename        string             `json:"basename" yaml:"basename"`
	BaseTables      map[int]TableSpec  `json:"base_tables" yaml:"base_tables"`
	CompactedTables map[int]TableSpec  `json:"compacted_tables" yaml:"compacted_tables"`

	// Columns maps data column names to their database type. Only columns
	// present with the same type in every table of the set are usable.
	Columns map[string]string `json:"columns" yaml:"columns"`
}

// NewTableSet builds a table set for basename with base tables at
// baseResolutions and compacted tables at compactedResolutions. Both lists
// are normalized; the two sets need not be disjoint.
func NewTableSet(basename string, baseResolutions, compactedResolutions []int) (*TableSet, error) {
	base, err := h3res.Normalize(baseResolutions)
	if err != nil {
		return nil, err
	}
	compacted, err := h3res.Normalize(compactedResolutions)
	if err != nil {
		return nil, err
	}

	ts := &TableSet{
		Basename:        basename,
		BaseTables:      make(map[int]TableSpec, len(base)),
		CompactedTables: make(map[int]TableSpec, len(compacted)),
		Columns:         make(map[string]string),
	}
	for _, res := range base {
		ts.BaseTables[res] = TableSpec{Resolution: res, Kind: KindBase}
	}
	for _, res := range compacted {
		ts.CompactedTables[res] = TableSpec{Resolution: res, Kind: KindCompacted}
	}
	return ts, nil
}

// BaseResolutions returns the resolutions materialized as base tables,
// ascending.
func (ts *TableSet) BaseResolutions() []int {
	return sortedKeys(ts.BaseTables)
}

// CompactedResolutions returns the resolutions materialized as compacted
// tables, ascending.
func (ts *TableSet) CompactedResolutions() []int {
	return sortedKeys(ts.CompactedTables)
}

// MaxResolution returns the finest resolution materialized by any table of
// the set, or -1 for an empty set.
func (ts *TableSet) MaxResolution() int {
	max := -1
	for res := range ts.BaseTables {
		if res > max {
			max = res
		}
	}
	for res := range ts.CompactedTables {
		if res > max {
			max = res
		}
	}
	return max
}

// Tables returns every physical table of the set, base tables first, each
// group ordered by resolution.
func (ts *TableSet) Tables() []Table {
	tables := make([]Table, 0, len(ts.BaseTables)+len(ts.CompactedTables))
	for _, res := range ts.BaseResolutions() {
		tables = append(tables, Table{Basename: ts.Basename, Spec: ts.BaseTables[res]})
	}
	for _, res := range ts.CompactedResolutions() {
		tables = append(tables, Table{Basename: ts.Basename, Spec: ts.CompactedTables[res]})
	}
	return tables
}

// NumTables returns the number of physical tables of the set.
func (ts *TableSet) NumTables() int {
	return len(ts.BaseTables) + len(ts.CompactedTables)
}

// ColumnNames returns the data column names, ascending.
func (ts *TableSet) ColumnNames() []string {
	names := make([]string, 0, len(ts.Columns))
	for name := range ts.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(specs map[int]TableSpec) []int {
	keys := make([]int, 0, len(specs))
	for res := range specs {
		keys = append(keys, res)
	}
	sort.Ints(keys)
	return keys
}

// FindTableSets groups a list of physical table names into table sets,
// ignoring names outside the naming scheme and temporary ingestion tables.
// This is how table sets are discovered from a live database catalog.
func FindTableSets(tableNames []string) map[string]*TableSet {
	tableSets := make(map[string]*TableSet)
	for _, name := range tableNames {
		table, ok := ParseTableName(name)
		if !ok || table.Spec.IsTemporary() {
			continue
		}
		ts, ok := tableSets[table.Basename]
		if !ok {
			ts = &TableSet{
				Basename:        table.Basename,
				BaseTables:      make(map[int]TableSpec),
				CompactedTables: make(map[int]TableSpec),
				Columns:         make(map[string]string),
			}
			tableSets[table.Basename] = ts
		}
		switch table.Spec.Kind {
		case KindBase:
			ts.BaseTables[table.Spec.Resolution] = table.Spec
		case KindCompacted:
			ts.CompactedTables[table.Spec.Resolution] = table.Spec
		}
	}
	return tableSets
}
