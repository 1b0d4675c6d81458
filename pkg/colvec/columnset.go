package colvec

import (
	"sort"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// ColumnSet is a set of named columns sharing positional row alignment:
// index i of every column belongs to the same logical row. The equal-length
// invariant is enforced on every Add.
type ColumnSet struct {
	columns map[string]Column
	length  int
}

// NewColumnSet creates an empty column set.
func NewColumnSet() *ColumnSet {
	return &ColumnSet{
		columns: make(map[string]Column),
		length:  -1,
	}
}

// Add inserts or replaces a named column. The first column added fixes the
// row count of the set; any later column with a differing length is
// rejected.
func (cs *ColumnSet) Add(name string, col Column) error {
	if cs.length >= 0 && col.Len() != cs.length {
		return errors.NewDifferentColumnLength(name, cs.length, col.Len())
	}
	if cs.length < 0 {
		cs.length = col.Len()
	}
	cs.columns[name] = col
	return nil
}

// Column returns the named column.
func (cs *ColumnSet) Column(name string) (Column, bool) {
	col, ok := cs.columns[name]
	return col, ok
}

// Names returns the column names in ascending order.
func (cs *ColumnSet) Names() []string {
	names := make([]string, 0, len(cs.columns))
	for name := range cs.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of rows, 0 for an empty set.
func (cs *ColumnSet) Len() int {
	if cs.length < 0 {
		return 0
	}
	return cs.length
}

// NumColumns returns the number of columns.
func (cs *ColumnSet) NumColumns() int {
	return len(cs.columns)
}

// Empty reports whether the set holds no rows.
func (cs *ColumnSet) Empty() bool {
	return cs.Len() == 0
}

// TypeNames returns the tag of every column keyed by name, the surface a
// host-language wrapper needs for type checking.
func (cs *ColumnSet) TypeNames() map[string]string {
	types := make(map[string]string, len(cs.columns))
	for name, col := range cs.columns {
		types[name] = col.TypeName()
	}
	return types
}
