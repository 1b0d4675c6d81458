package tableset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

func TestNewTableSetNormalizesResolutions(t *testing.T) {
	ts, err := NewTableSet("water", []int{8, 6, 8}, []int{3})
	require.NoError(t, err)

	assert.Equal(t, []int{6, 8}, ts.BaseResolutions())
	assert.Equal(t, []int{3}, ts.CompactedResolutions())
	assert.Equal(t, 8, ts.MaxResolution())
	assert.Equal(t, 3, ts.NumTables())
}

func TestNewTableSetRejectsInvalidResolution(t *testing.T) {
	_, err := NewTableSet("water", []int{16}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidResolution(err))
}

func TestTableSetEmptyMaxResolution(t *testing.T) {
	ts, err := NewTableSet("water", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, ts.MaxResolution())
	assert.Empty(t, ts.Tables())
}

func TestTableSetTablesOrdered(t *testing.T) {
	ts, err := NewTableSet("water", []int{8, 6}, []int{3, 1})
	require.NoError(t, err)

	names := make([]string, 0, ts.NumTables())
	for _, table := range ts.Tables() {
		names = append(names, table.Name())
	}
	assert.Equal(t, []string{
		"water_06_base",
		"water_08_base",
		"water_01_compacted",
		"water_03_compacted",
	}, names)
}

func TestFindTableSets(t *testing.T) {
	tableSets := FindTableSets([]string{
		"water_06_base",
		"water_08_base",
		"water_03_compacted",
		"elephant_density_02_compacted",
		"water_08_base_tmp1693000000_ab12cd", // ingestion leftover, skipped
		"schema_migrations",                  // outside the naming scheme
	})

	require.Len(t, tableSets, 2)

	water := tableSets["water"]
	require.NotNil(t, water)
	assert.Equal(t, []int{6, 8}, water.BaseResolutions())
	assert.Equal(t, []int{3}, water.CompactedResolutions())

	elephants := tableSets["elephant_density"]
	require.NotNil(t, elephants)
	assert.Empty(t, elephants.BaseResolutions())
	assert.Equal(t, []int{2}, elephants.CompactedResolutions())
}
