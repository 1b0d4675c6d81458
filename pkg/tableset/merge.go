package tableset

import (
	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/colvec"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// MergeResults reconstructs the resolution-uniform result set from the raw
// per-table batches of a plan. Batches must be ordered like plan.Reads.
// Rows of uncompact-tagged reads are expanded down to the plan resolution:
// the cell column is replaced by the descendants of each row's cell
// (restricted to the requested cells when the query was bounded) and every
// other column broadcasts the parent row's value to all descendants. This
// broadcast duplicates values on purpose, it is not an aggregation.
//
// Either the full merged set is returned or an error; no partial rows.
func MergeResults(plan *QueryPlan, batches []*colvec.ColumnSet) (*colvec.ColumnSet, error) {
	if len(batches) != len(plan.Reads) {
		return nil, errors.Newf(errors.ErrorTypeData,
			"plan has %d reads but %d batches were given", len(plan.Reads), len(batches))
	}

	var requested map[h3.Cell]struct{}
	if len(plan.RequestedCells) > 0 {
		requested = make(map[h3.Cell]struct{}, len(plan.RequestedCells))
		for _, cell := range plan.RequestedCells {
			requested[cell] = struct{}{}
		}
	}

	out := colvec.NewColumnSet()
	for i, batch := range batches {
		if batch == nil || batch.Empty() {
			continue
		}
		processed := batch
		if plan.Reads[i].Uncompact {
			expanded, err := uncompactBatch(batch, plan.Resolution, requested)
			if err != nil {
				return nil, err
			}
			processed = expanded
		}
		if err := appendBatch(out, processed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// uncompactBatch expands the cell column of a compacted-table batch to
// target resolution and broadcasts all other columns accordingly.
func uncompactBatch(batch *colvec.ColumnSet, targetResolution int, requested map[h3.Cell]struct{}) (*colvec.ColumnSet, error) {
	cellColumn, ok := batch.Column(CellColumn)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeData, "batch has no %s column", CellColumn)
	}
	cellValues, ok := cellColumn.(colvec.UInt64Column)
	if !ok {
		return nil, errors.NewColumnTypeMismatch("u64", cellColumn.TypeName())
	}

	// counts[i] is the number of rows that row i expands into
	counts := make([]int, len(cellValues))
	expanded := make(colvec.UInt64Column, 0, len(cellValues))
	for i, value := range cellValues {
		cell := h3.Cell(value)
		if !cell.IsValid() {
			return nil, errors.NewInvalidCell(value)
		}
		res := cell.Resolution()
		switch {
		case res == targetResolution:
			if requested != nil {
				if _, ok := requested[cell]; !ok {
					continue
				}
			}
			expanded = append(expanded, value)
			counts[i] = 1
		case res < targetResolution:
			children, err := cell.Children(targetResolution)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeValidation, "children lookup")
			}
			kept := 0
			for _, child := range children {
				if requested != nil {
					if _, ok := requested[child]; !ok {
						continue
					}
				}
				expanded = append(expanded, uint64(child))
				kept++
			}
			counts[i] = kept
		default:
			return nil, errors.NewResolutionTooCoarse(res, targetResolution)
		}
	}

	out := colvec.NewColumnSet()
	if err := out.Add(CellColumn, expanded); err != nil {
		return nil, err
	}
	for _, name := range batch.Names() {
		if name == CellColumn {
			continue
		}
		col, _ := batch.Column(name)
		broadcast, err := colvec.Repeat(col, counts)
		if err != nil {
			return nil, err
		}
		if err := out.Add(name, broadcast); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// appendBatch concatenates batch onto acc, column by column. The first
// batch fixes the column layout; later batches must match it.
func appendBatch(acc, batch *colvec.ColumnSet) error {
	if acc.NumColumns() == 0 {
		for _, name := range batch.Names() {
			col, _ := batch.Column(name)
			if err := acc.Add(name, col); err != nil {
				return err
			}
		}
		return nil
	}

	if acc.NumColumns() != batch.NumColumns() {
		return errors.Newf(errors.ErrorTypeData,
			"batch has %d columns, expected %d", batch.NumColumns(), acc.NumColumns())
	}
	merged := make(map[string]colvec.Column, acc.NumColumns())
	for _, name := range acc.Names() {
		existing, _ := acc.Column(name)
		col, ok := batch.Column(name)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "batch is missing column %q", name)
		}
		joined, err := colvec.Concat(existing, col)
		if err != nil {
			return err
		}
		merged[name] = joined
	}

	// rebuild to keep the equal-length invariant intact
	*acc = *colvec.NewColumnSet()
	for name, col := range merged {
		if err := acc.Add(name, col); err != nil {
			return err
		}
	}
	return nil
}
