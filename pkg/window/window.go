// Package window provides cell neighborhood iteration and the resolution
// selection for batched window queries over a table set.
package window

import (
	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/compaction"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/h3res"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/tableset"
)

// DiskIterator walks the filled disk of radius k around a center cell,
// center first. Restartable via Reset.
type DiskIterator struct {
	center h3.Cell
	k      int

	cells []h3.Cell
	pos   int
}

// Disk creates an iterator over the cells within grid distance k of
// center. k 0 yields only the center itself.
func Disk(center h3.Cell, k int) (*DiskIterator, error) {
	if !center.IsValid() {
		return nil, errors.NewInvalidCell(uint64(center))
	}
	if k < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "negative disk radius %d", k)
	}
	cells, err := center.GridDisk(k)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "grid disk")
	}
	return &DiskIterator{center: center, k: k, cells: cells}, nil
}

// Next returns the next cell of the disk, false when exhausted.
func (it *DiskIterator) Next() (h3.Cell, bool) {
	if it.pos >= len(it.cells) {
		return 0, false
	}
	cell := it.cells[it.pos]
	it.pos++
	return cell, true
}

// Reset rewinds the iterator to the start of the disk.
func (it *DiskIterator) Reset() {
	it.pos = 0
}

// Cells returns all remaining cells of the disk at once.
func (it *DiskIterator) Cells() []h3.Cell {
	remaining := it.cells[it.pos:]
	it.pos = len(it.cells)
	return remaining
}

// RingIterator walks the hollow ring at exactly grid distance k around a
// center cell. Restartable via Reset.
type RingIterator struct {
	center h3.Cell
	k      int

	cells []h3.Cell
	pos   int
}

// Ring creates an iterator over the cells at exactly grid distance k of
// center. k 0 yields only the center itself. Near pentagons a ring may be
// shorter than the regular 6*k cells.
func Ring(center h3.Cell, k int) (*RingIterator, error) {
	if !center.IsValid() {
		return nil, errors.NewInvalidCell(uint64(center))
	}
	if k < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "negative ring radius %d", k)
	}
	rings, err := center.GridDiskDistances(k)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "grid disk distances")
	}
	var cells []h3.Cell
	if k < len(rings) {
		cells = rings[k]
	}
	return &RingIterator{center: center, k: k, cells: cells}, nil
}

// Next returns the next cell of the ring, false when exhausted.
func (it *RingIterator) Next() (h3.Cell, bool) {
	if it.pos >= len(it.cells) {
		return 0, false
	}
	cell := it.cells[it.pos]
	it.pos++
	return cell, true
}

// Reset rewinds the iterator to the start of the ring.
func (it *RingIterator) Reset() {
	it.pos = 0
}

// Cells returns all remaining cells of the ring at once.
func (it *RingIterator) Cells() []h3.Cell {
	remaining := it.cells[it.pos:]
	it.pos = len(it.cells)
	return remaining
}

// WindowResolution finds the resolution to generate coarser window cells
// at, so that no window covers more than maxWindowSize cells at
// targetResolution. The result is the coarsest base resolution of the
// table set satisfying the bound, or targetResolution itself when no base
// resolution does.
func WindowResolution(ts *tableset.TableSet, targetResolution, maxWindowSize int) (int, error) {
	if err := h3res.Validate(targetResolution); err != nil {
		return 0, err
	}
	if maxWindowSize < 1 {
		return 0, errors.Newf(errors.ErrorTypeValidation, "window size %d must be > 0", maxWindowSize)
	}
	for _, res := range ts.BaseResolutions() {
		if res >= targetResolution {
			break
		}
		if compaction.PowFanout(targetResolution-res) <= maxWindowSize {
			return res, nil
		}
	}
	return targetResolution, nil
}
