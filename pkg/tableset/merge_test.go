package tableset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/colvec"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

func batchOf(t *testing.T, columns map[string]colvec.Column) *colvec.ColumnSet {
	t.Helper()
	cs := colvec.NewColumnSet()
	for name, col := range columns {
		require.NoError(t, cs.Add(name, col))
	}
	return cs
}

func cellColumnOf(t *testing.T, cs *colvec.ColumnSet) colvec.UInt64Column {
	t.Helper()
	col, ok := cs.Column(CellColumn)
	require.True(t, ok)
	cells, ok := col.(colvec.UInt64Column)
	require.True(t, ok)
	return cells
}

func TestMergeResultsBroadcastsCompactedRow(t *testing.T) {
	ts := mustTableSet(t, nil, []int{2})
	plan, err := Resolve(ts, 5, nil, PlannerOptions{})
	require.NoError(t, err)

	stored := testCell(t, 2)
	batch := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(stored)},
		"value":    colvec.Float64Column{1.5},
	})

	merged, err := MergeResults(plan, []*colvec.ColumnSet{batch})
	require.NoError(t, err)

	// one res-2 row fans out to its 7^3 descendants, all carrying the
	// parent's value
	require.Equal(t, 343, merged.Len())
	values, ok := merged.Column("value")
	require.True(t, ok)
	for i := 0; i < values.Len(); i++ {
		assert.Equal(t, 1.5, values.Value(i))
	}
	for _, raw := range cellColumnOf(t, merged) {
		cell := h3.Cell(raw)
		assert.Equal(t, 5, cell.Resolution())
		parent, err := cell.Parent(2)
		require.NoError(t, err)
		assert.Equal(t, stored, parent)
	}
}

func TestMergeResultsRestrictsToRequestedCells(t *testing.T) {
	ts := mustTableSet(t, nil, []int{2})
	stored := testCell(t, 2)
	descendants, err := stored.Children(5)
	require.NoError(t, err)
	requested := descendants[:2]

	plan, err := Resolve(ts, 5, requested, PlannerOptions{})
	require.NoError(t, err)

	batch := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(stored)},
		"value":    colvec.Int32Column{7},
	})

	merged, err := MergeResults(plan, []*colvec.ColumnSet{batch})
	require.NoError(t, err)

	require.Equal(t, 2, merged.Len())
	assert.ElementsMatch(t, requested, []h3.Cell{
		h3.Cell(cellColumnOf(t, merged)[0]),
		h3.Cell(cellColumnOf(t, merged)[1]),
	})
}

func TestMergeResultsMixedResolutionBatch(t *testing.T) {
	ts := mustTableSet(t, nil, []int{5})
	plan, err := Resolve(ts, 5, nil, PlannerOptions{})
	require.NoError(t, err)

	coarse := testCell(t, 4)
	fine := testCell(t, 5)
	batch := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(coarse), uint64(fine)},
		"value":    colvec.Float32Column{1, 2},
	})

	merged, err := MergeResults(plan, []*colvec.ColumnSet{batch})
	require.NoError(t, err)
	// the res-4 row expands to 7 children, the res-5 row passes through
	assert.Equal(t, 8, merged.Len())
}

func TestMergeResultsPassesBaseReadThrough(t *testing.T) {
	ts := mustTableSet(t, []int{8}, nil)
	cells := testCells(t, 8, 2)
	plan, err := Resolve(ts, 8, cells, PlannerOptions{})
	require.NoError(t, err)

	batch := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(cells[0]), uint64(cells[1])},
		"value":    colvec.Float64Column{1.0, 2.0},
	})

	merged, err := MergeResults(plan, []*colvec.ColumnSet{batch})
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, []string{CellColumn, "value"}, merged.Names())
}

func TestMergeResultsConcatenatesReads(t *testing.T) {
	cells := testCells(t, 6, 4)
	plan := &QueryPlan{
		Basename:            "water",
		Resolution:          6,
		EffectiveResolution: 6,
		Reads: []TableRead{
			{Table: Table{Basename: "water", Spec: TableSpec{Resolution: 6, Kind: KindBase}}},
			{Table: Table{Basename: "water", Spec: TableSpec{Resolution: 6, Kind: KindBase}}},
		},
	}

	first := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(cells[0]), uint64(cells[1])},
		"value":    colvec.Int64Column{1, 2},
	})
	second := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(cells[2]), uint64(cells[3])},
		"value":    colvec.Int64Column{3, 4},
	})

	merged, err := MergeResults(plan, []*colvec.ColumnSet{first, second})
	require.NoError(t, err)
	assert.Equal(t, 4, merged.Len())
}

func TestMergeResultsBatchCountMismatch(t *testing.T) {
	ts := mustTableSet(t, []int{8}, nil)
	plan, err := Resolve(ts, 8, nil, PlannerOptions{})
	require.NoError(t, err)

	_, err = MergeResults(plan, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestMergeResultsRejectsTooFineRows(t *testing.T) {
	ts := mustTableSet(t, nil, []int{2})
	plan, err := Resolve(ts, 2, nil, PlannerOptions{})
	require.NoError(t, err)

	batch := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.UInt64Column{uint64(testCell(t, 3))},
	})

	_, err = MergeResults(plan, []*colvec.ColumnSet{batch})
	require.Error(t, err)
	assert.True(t, errors.IsResolutionTooCoarse(err))
}

func TestMergeResultsRejectsWrongCellColumnType(t *testing.T) {
	ts := mustTableSet(t, nil, []int{2})
	plan, err := Resolve(ts, 2, nil, PlannerOptions{})
	require.NoError(t, err)

	batch := batchOf(t, map[string]colvec.Column{
		CellColumn: colvec.Int64Column{1},
	})

	_, err = MergeResults(plan, []*colvec.ColumnSet{batch})
	require.Error(t, err)
	assert.True(t, errors.IsColumnTypeMismatch(err))
}

func TestMergeResultsSkipsEmptyBatches(t *testing.T) {
	ts := mustTableSet(t, []int{8}, nil)
	plan, err := Resolve(ts, 8, nil, PlannerOptions{})
	require.NoError(t, err)

	merged, err := MergeResults(plan, []*colvec.ColumnSet{nil})
	require.NoError(t, err)
	assert.True(t, merged.Empty())
}
