// Package geom derives vector geometries from cell sets.
package geom

import (
	"sort"

	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// ConvexHull computes the convex hull around the boundary vertices of all
// given cells. The returned polygon ring is closed and wound
// counterclockwise.
func ConvexHull(cells []h3.Cell) (orb.Polygon, error) {
	if len(cells) == 0 {
		return nil, errors.NewEmptyCells()
	}

	points := make([]orb.Point, 0, len(cells)*6)
	for _, cell := range cells {
		if !cell.IsValid() {
			return nil, errors.NewInvalidCell(uint64(cell))
		}
		boundary, err := cell.Boundary()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "cell boundary")
		}
		for _, vertex := range boundary {
			points = append(points, orb.Point{vertex.Lng, vertex.Lat})
		}
	}

	ring := monotoneChain(points)
	return orb.Polygon{ring}, nil
}

// monotoneChain is Andrew's monotone chain hull over lexicographically
// sorted points. Collinear points on the hull edges are dropped.
func monotoneChain(points []orb.Point) orb.Ring {
	sort.Slice(points, func(i, j int) bool {
		if points[i][0] != points[j][0] {
			return points[i][0] < points[j][0]
		}
		return points[i][1] < points[j][1]
	})
	points = dedupePoints(points)

	if len(points) < 3 {
		// degenerate hull, close the ring over what is there
		ring := make(orb.Ring, 0, len(points)+1)
		ring = append(ring, points...)
		ring = append(ring, points[0])
		return ring
	}

	var lower []orb.Point
	for _, p := range points {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []orb.Point
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// the endpoint of each chain is the start of the other
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	hull = append(hull, hull[0])
	return orb.Ring(hull)
}

func dedupePoints(sorted []orb.Point) []orb.Point {
	out := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			out = append(out, p)
		}
	}
	return out
}

// cross is the z component of (b-a) x (c-a): positive for a left turn.
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
