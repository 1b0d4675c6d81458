package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
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

func TestConvexHullSingleCell(t *testing.T) {
	cell := testCell(t, 6)
	polygon, err := ConvexHull([]h3.Cell{cell})
	require.NoError(t, err)
	require.Len(t, polygon, 1)

	ring := polygon[0]
	require.GreaterOrEqual(t, len(ring), 4)
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")

	// every boundary vertex of the cell lies in the hull
	boundary, err := cell.Boundary()
	require.NoError(t, err)
	for _, vertex := range boundary {
		point := orb.Point{vertex.Lng, vertex.Lat}
		assert.True(t, planar.RingContains(ring, point))
	}
}

func TestConvexHullCoversAllCells(t *testing.T) {
	center := testCell(t, 6)
	cells, err := center.GridDisk(2)
	require.NoError(t, err)

	polygon, err := ConvexHull(cells)
	require.NoError(t, err)
	ring := polygon[0]

	for _, cell := range cells {
		latLng, err := cell.LatLng()
		require.NoError(t, err)
		assert.True(t, planar.RingContains(ring, orb.Point{latLng.Lng, latLng.Lat}))
	}
}

func TestConvexHullIsConvex(t *testing.T) {
	center := testCell(t, 6)
	cells, err := center.GridDisk(3)
	require.NoError(t, err)

	polygon, err := ConvexHull(cells)
	require.NoError(t, err)
	ring := polygon[0]

	// consecutive hull edges only ever turn left
	for i := 0; i+2 < len(ring); i++ {
		assert.GreaterOrEqual(t, cross(ring[i], ring[i+1], ring[i+2]), 0.0)
	}
}

func TestConvexHullEmptyInput(t *testing.T) {
	_, err := ConvexHull(nil)
	require.Error(t, err)
	assert.True(t, errors.IsEmptyCells(err))
}

func TestConvexHullInvalidCell(t *testing.T) {
	_, err := ConvexHull([]h3.Cell{testCell(t, 6), h3.Cell(0)})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidCell(err))
}
