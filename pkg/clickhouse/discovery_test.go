package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTableSets(t *testing.T) {
	entries := []catalogEntry{
		{"water_06_base", "h3index", "UInt64"},
		{"water_06_base", "value", "Float32"},
		{"water_06_base", "observed_on", "DateTime"},
		{"water_03_compacted", "h3index", "UInt64"},
		{"water_03_compacted", "value", "Float32"},
		{"water_03_compacted", "observed_on", "DateTime"},
	}

	tableSets := buildTableSets(entries)
	require.Len(t, tableSets, 1)

	water := tableSets["water"]
	require.NotNil(t, water)
	assert.Equal(t, []int{6}, water.BaseResolutions())
	assert.Equal(t, []int{3}, water.CompactedResolutions())
	assert.Equal(t, map[string]string{
		"value":       "Float32",
		"observed_on": "DateTime",
	}, water.Columns)
}

func TestBuildTableSetsIgnoresUnsharedColumns(t *testing.T) {
	entries := []catalogEntry{
		{"water_06_base", "h3index", "UInt64"},
		{"water_06_base", "value", "Float32"},
		{"water_03_compacted", "h3index", "UInt64"},
		// same name, different type: unusable for the set
		{"water_03_compacted", "value", "Float64"},
	}

	tableSets := buildTableSets(entries)
	water := tableSets["water"]
	require.NotNil(t, water)
	assert.Empty(t, water.Columns)
}

func TestBuildTableSetsSkipsTablesWithoutCellColumn(t *testing.T) {
	entries := []catalogEntry{
		{"water_06_base", "h3index", "UInt64"},
		{"water_06_base", "value", "Float32"},
		// a cell column of the wrong type does not qualify
		{"soil_04_base", "h3index", "Int64"},
		{"soil_04_base", "value", "Float32"},
		{"migrations", "id", "UInt64"},
	}

	tableSets := buildTableSets(entries)
	require.Len(t, tableSets, 1)
	assert.Contains(t, tableSets, "water")
}
