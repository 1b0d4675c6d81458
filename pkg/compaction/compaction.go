// Package compaction implements the pure set transformations between cell
// resolutions: replacing complete sibling groups by their parent cell
// (compact) and expanding cells to their descendants at a finer resolution
// (uncompact). Both directions are deterministic and free of shared state;
// parent/child relations are computed algebraically by the H3 library, never
// stored.
package compaction

import (
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/h3res"
)

// Compact reduces a set of cells, all at exactly resolution, to the minimal
// mixed-resolution set covering the same area. Complete sibling groups are
// replaced by their parent repeatedly until no full group remains. The
// result is sorted ascending by cell id, so for a given input set the output
// is unique regardless of input order. Duplicate input cells are ignored.
func Compact(cells []h3.Cell, resolution int) ([]h3.Cell, error) {
	if err := h3res.Validate(resolution); err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, errors.NewEmptyCells()
	}

	current := make(map[h3.Cell]struct{}, len(cells))
	for _, cell := range cells {
		if !cell.IsValid() {
			return nil, errors.NewInvalidCell(uint64(cell))
		}
		if res := cell.Resolution(); res != resolution {
			return nil, errors.NewMixedResolutions(resolution, res)
		}
		current[cell] = struct{}{}
	}

	var out []h3.Cell
	for res := resolution; res > h3res.MinResolution && len(current) > 0; res-- {
		byParent := make(map[h3.Cell][]h3.Cell)
		for cell := range current {
			parent, err := cell.Parent(res - 1)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeValidation, "parent lookup")
			}
			byParent[parent] = append(byParent[parent], cell)
		}

		next := make(map[h3.Cell]struct{})
		for parent, group := range byParent {
			// children count is taken from the grid itself, which keeps
			// pentagon parents (6 children) correct
			children, err := parent.Children(res)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeValidation, "children lookup")
			}
			if len(group) == len(children) {
				next[parent] = struct{}{}
			} else {
				out = append(out, group...)
			}
		}
		current = next
	}
	for cell := range current {
		out = append(out, cell)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Uncompact expands every cell to its full set of descendants at
// targetResolution. Cells already at targetResolution are kept as-is. A cell
// finer than targetResolution cannot be expanded and fails the whole call.
// The result is not deduplicated: inputs produced by Compact are disjoint by
// construction, callers combining other sources must deduplicate themselves.
func Uncompact(cells []h3.Cell, targetResolution int) ([]h3.Cell, error) {
	if err := h3res.Validate(targetResolution); err != nil {
		return nil, err
	}

	out := make([]h3.Cell, 0, len(cells))
	for _, cell := range cells {
		if !cell.IsValid() {
			return nil, errors.NewInvalidCell(uint64(cell))
		}
		res := cell.Resolution()
		switch {
		case res == targetResolution:
			out = append(out, cell)
		case res < targetResolution:
			children, err := cell.Children(targetResolution)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeValidation, "children lookup")
			}
			out = append(out, children...)
		default:
			return nil, errors.NewResolutionTooCoarse(res, targetResolution)
		}
	}
	return out, nil
}

// UncompactedSize returns the number of cells Uncompact would produce,
// without materializing them. Used to bound decompaction fan-out before
// committing to the expansion.
func UncompactedSize(cells []h3.Cell, targetResolution int) (int, error) {
	if err := h3res.Validate(targetResolution); err != nil {
		return 0, err
	}

	total := 0
	for _, cell := range cells {
		if !cell.IsValid() {
			return 0, errors.NewInvalidCell(uint64(cell))
		}
		res := cell.Resolution()
		if res > targetResolution {
			return 0, errors.NewResolutionTooCoarse(res, targetResolution)
		}
		total += PowFanout(targetResolution - res)
	}
	return total, nil
}

// PowFanout returns 7^k, the nominal hexagon fan-out over k resolution steps.
func PowFanout(k int) int {
	n := 1
	for i := 0; i < k; i++ {
		n *= 7
	}
	return n
}
