package compaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// somewhere in Brandenburg, far away from any pentagon
func testCell(t *testing.T, resolution int) h3.Cell {
	t.Helper()
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: 52.52, Lng: 13.4}, resolution)
	require.NoError(t, err)
	require.True(t, cell.IsValid())
	return cell
}

func childrenOf(t *testing.T, cell h3.Cell, resolution int) []h3.Cell {
	t.Helper()
	children, err := cell.Children(resolution)
	require.NoError(t, err)
	return children
}

func TestCompactFullSiblingGroup(t *testing.T) {
	parent := testCell(t, 5)
	children := childrenOf(t, parent, 6)
	require.Len(t, children, 7)

	out, err := Compact(children, 6)
	require.NoError(t, err)
	assert.Equal(t, []h3.Cell{parent}, out)
}

func TestCompactPartialGroupKeepsCells(t *testing.T) {
	parent := testCell(t, 5)
	children := childrenOf(t, parent, 6)
	partial := children[:6]

	out, err := Compact(partial, 6)
	require.NoError(t, err)
	assert.ElementsMatch(t, partial, out)
}

func TestCompactRepeatsUpward(t *testing.T) {
	// the full res-6 descendant set of a res-4 cell collapses two levels
	ancestor := testCell(t, 4)
	descendants := childrenOf(t, ancestor, 6)
	require.Len(t, descendants, 49)

	out, err := Compact(descendants, 6)
	require.NoError(t, err)
	assert.Equal(t, []h3.Cell{ancestor}, out)
}

func TestCompactOrderIndependent(t *testing.T) {
	ancestor := testCell(t, 4)
	descendants := childrenOf(t, ancestor, 6)
	// drop one descendant so the result stays mixed-resolution
	cells := descendants[1:]

	forward, err := Compact(cells, 6)
	require.NoError(t, err)

	reversed := make([]h3.Cell, len(cells))
	for i, cell := range cells {
		reversed[len(cells)-1-i] = cell
	}
	backward, err := Compact(reversed, 6)
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}

func TestCompactIgnoresDuplicates(t *testing.T) {
	parent := testCell(t, 5)
	children := childrenOf(t, parent, 6)
	doubled := append(append([]h3.Cell{}, children...), children...)

	out, err := Compact(doubled, 6)
	require.NoError(t, err)
	assert.Equal(t, []h3.Cell{parent}, out)
}

func TestCompactRejectsMixedResolutions(t *testing.T) {
	cells := []h3.Cell{testCell(t, 6), testCell(t, 5)}
	_, err := Compact(cells, 6)
	assert.True(t, errors.IsMixedResolutions(err))
}

func TestCompactRejectsInvalidCell(t *testing.T) {
	_, err := Compact([]h3.Cell{0}, 6)
	assert.True(t, errors.IsInvalidCell(err))
}

func TestCompactRejectsEmptyInput(t *testing.T) {
	_, err := Compact(nil, 6)
	assert.True(t, errors.IsEmptyCells(err))
}

func TestCompactRejectsInvalidResolution(t *testing.T) {
	_, err := Compact([]h3.Cell{testCell(t, 6)}, 16)
	assert.True(t, errors.IsInvalidResolution(err))
}

func TestUncompactCardinality(t *testing.T) {
	cell := testCell(t, 5)
	out, err := Uncompact([]h3.Cell{cell}, 8)
	require.NoError(t, err)
	assert.Len(t, out, 343) // 7^3
	for _, c := range out {
		assert.Equal(t, 8, c.Resolution())
	}
}

func TestUncompactKeepsCellsAtTarget(t *testing.T) {
	cell := testCell(t, 8)
	out, err := Uncompact([]h3.Cell{cell}, 8)
	require.NoError(t, err)
	assert.Equal(t, []h3.Cell{cell}, out)
}

func TestUncompactRejectsFinerInput(t *testing.T) {
	cell := testCell(t, 9)
	_, err := Uncompact([]h3.Cell{cell}, 8)
	assert.True(t, errors.IsResolutionTooCoarse(err))
}

func TestUncompactEmptyInput(t *testing.T) {
	out, err := Uncompact(nil, 8)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompactUncompactRoundTrip(t *testing.T) {
	parent := testCell(t, 5)
	cells := childrenOf(t, parent, 7)
	require.Len(t, cells, 49)

	compacted, err := Compact(cells, 7)
	require.NoError(t, err)
	require.Equal(t, []h3.Cell{parent}, compacted)

	restored, err := Uncompact(compacted, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, cells, restored)
}

func TestCompactIdempotent(t *testing.T) {
	ancestor := testCell(t, 4)
	cells := childrenOf(t, ancestor, 6)[1:]

	first, err := Compact(cells, 6)
	require.NoError(t, err)

	// flatten back to the working resolution and compact again
	flattened, err := Uncompact(first, 6)
	require.NoError(t, err)
	second, err := Compact(flattened, 6)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUncompactedSize(t *testing.T) {
	cells := []h3.Cell{testCell(t, 5), testCell(t, 6)}
	n, err := UncompactedSize(cells, 7)
	require.NoError(t, err)
	assert.Equal(t, 49+7, n)
}

func TestUncompactedSizeRejectsFinerInput(t *testing.T) {
	_, err := UncompactedSize([]h3.Cell{testCell(t, 9)}, 8)
	assert.True(t, errors.IsResolutionTooCoarse(err))
}

func TestPowFanout(t *testing.T) {
	assert.Equal(t, 1, PowFanout(0))
	assert.Equal(t, 7, PowFanout(1))
	assert.Equal(t, 343, PowFanout(3))
}
