package tableset

import (
	"fmt"
	"sort"
	"strings"

	h3 "github.com/uber/h3-go/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/compaction"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/h3res"
)

// CellColumn is the column name carrying the cell identifier in every table.
const CellColumn = "h3index"

// DefaultMaxFanout bounds the per-row decompaction expansion of a plan
// (7^4 descendants over four resolution steps).
const DefaultMaxFanout = 2401

// PlannerOptions tune the resolution-selection behavior of Resolve.
type PlannerOptions struct {
	// AllowCoarser permits answering a query from a base table at a
	// coarser resolution when nothing else matches. The caller receives
	// coarser rows as-is and the plan records the relaxation.
	AllowCoarser bool

	// MaxFanout caps the worst-case decompaction expansion per returned
	// row. Zero means DefaultMaxFanout.
	MaxFanout int
}

func (o PlannerOptions) maxFanout() int {
	if o.MaxFanout <= 0 {
		return DefaultMaxFanout
	}
	return o.MaxFanout
}

// TableRead is one physical read of a query plan: a table, the cell
// predicate to apply (nil means unbounded), and whether the returned rows
// must be decompacted to the plan resolution afterwards.
type TableRead struct {
	Table     Table     `json:"table"`
	Cells     []h3.Cell `json:"cells,omitempty"`
	Uncompact bool      `json:"uncompact"`
}

// QueryPlan is the ordered sequence of physical reads answering one query,
// together with the resolution bookkeeping MergeResults needs.
type QueryPlan struct {
	Basename string `json:"basename"`

	// Resolution is the resolution the caller asked for.
	Resolution int `json:"resolution"`

	// EffectiveResolution is the resolution the returned rows will have.
	// It differs from Resolution only when the plan was relaxed to a
	// coarser base table.
	EffectiveResolution int `json:"effective_resolution"`

	// Relaxed is true when the caller receives coarser rows than requested.
	Relaxed bool `json:"relaxed"`

	// RequestedCells are the cells of the original query, used by the
	// merge step to restrict decompacted descendants. Nil for unbounded
	// queries.
	RequestedCells []h3.Cell `json:"requested_cells,omitempty"`

	Reads []TableRead `json:"reads"`
}

// Resolve decides which physical tables must be read to answer a query at
// queryResolution restricted to cells (nil or empty means unbounded),
// following the selection order:
//
//  1. a base table at exactly queryResolution is read directly;
//  2. otherwise the compacted table nearest below queryResolution is read
//     and marked for decompaction. The decompaction path broadcasts parent
//     values to all descendants, so it is only taken when the set
//     materializes no finer table (otherwise finer truth exists and the
//     broadcast would silently degrade it) and when the worst-case fan-out
//     stays within MaxFanout;
//  3. otherwise, with AllowCoarser, the base table nearest below
//     queryResolution is read as-is and the plan records the relaxation;
//  4. otherwise the table set cannot answer the query.
func Resolve(ts *TableSet, queryResolution int, cells []h3.Cell, opts PlannerOptions) (*QueryPlan, error) {
	if err := h3res.Validate(queryResolution); err != nil {
		return nil, err
	}
	for _, cell := range cells {
		if !cell.IsValid() {
			return nil, errors.NewInvalidCell(uint64(cell))
		}
		if res := cell.Resolution(); res != queryResolution {
			return nil, errors.NewMixedResolutions(queryResolution, res)
		}
	}

	plan := &QueryPlan{
		Basename:            ts.Basename,
		Resolution:          queryResolution,
		EffectiveResolution: queryResolution,
		RequestedCells:      cells,
	}

	// 1: dense table at the requested resolution
	if spec, ok := ts.BaseTables[queryResolution]; ok {
		plan.Reads = []TableRead{{
			Table: Table{Basename: ts.Basename, Spec: spec},
			Cells: cells,
		}}
		return plan, nil
	}

	// 2: nearest compacted table at or below the requested resolution
	if res, ok := nearestBelow(ts.CompactedTables, queryResolution); ok {
		exact := res == queryResolution
		finestIsOurs := ts.MaxResolution() <= res
		withinFanout := compaction.PowFanout(queryResolution-res) <= opts.maxFanout()
		if exact || (finestIsOurs && withinFanout) {
			predicate, err := ancestorPredicate(cells, res)
			if err != nil {
				return nil, err
			}
			plan.Reads = []TableRead{{
				Table:     Table{Basename: ts.Basename, Spec: ts.CompactedTables[res]},
				Cells:     predicate,
				Uncompact: true,
			}}
			return plan, nil
		}
	}

	// 3: coarser base table, only when the caller accepts relaxed resolution
	if opts.AllowCoarser {
		if res, ok := nearestBelow(ts.BaseTables, queryResolution); ok {
			parents, err := parentsAt(cells, res)
			if err != nil {
				return nil, err
			}
			plan.EffectiveResolution = res
			plan.Relaxed = true
			plan.Reads = []TableRead{{
				Table: Table{Basename: ts.Basename, Spec: ts.BaseTables[res]},
				Cells: parents,
			}}
			return plan, nil
		}
	}

	return nil, errors.NewNoQueryableTable(ts.Basename, queryResolution)
}

// nearestBelow returns the largest resolution key ≤ limit.
func nearestBelow(specs map[int]TableSpec, limit int) (int, bool) {
	best, found := -1, false
	for res := range specs {
		if res <= limit && res > best {
			best = res
			found = true
		}
	}
	return best, found
}

// ancestorPredicate builds the cell filter for a compacted table at
// tableResolution: the deduplicated ancestors of every query cell at all
// resolutions up to tableResolution. A compacted table stores rows at mixed
// resolutions at or below its own, so any stored row covering a query cell
// is one of these ancestors. Nil cells stay nil (unbounded read).
func ancestorPredicate(cells []h3.Cell, tableResolution int) ([]h3.Cell, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	seen := make(map[h3.Cell]struct{})
	for _, cell := range cells {
		for res := h3res.MinResolution; res <= tableResolution; res++ {
			parent, err := cell.Parent(res)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeValidation, "parent lookup")
			}
			seen[parent] = struct{}{}
		}
	}
	return sortedCells(seen), nil
}

// parentsAt maps every query cell to its ancestor at resolution, deduped.
func parentsAt(cells []h3.Cell, resolution int) ([]h3.Cell, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	seen := make(map[h3.Cell]struct{}, len(cells))
	for _, cell := range cells {
		parent, err := cell.Parent(resolution)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "parent lookup")
		}
		seen[parent] = struct{}{}
	}
	return sortedCells(seen), nil
}

func sortedCells(set map[h3.Cell]struct{}) []h3.Cell {
	cells := make([]h3.Cell, 0, len(set))
	for cell := range set {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return cells
}

// SelectStatement renders the SQL fragment reading this table: the cell
// column plus the given data columns, restricted to the predicate cells.
func (r TableRead) SelectStatement(columns []string) string {
	var sb strings.Builder
	sb.WriteString("select ")
	sb.WriteString(CellColumn)
	for _, col := range columns {
		sb.WriteString(", ")
		sb.WriteString(col)
	}
	sb.WriteString(" from ")
	sb.WriteString(r.Table.Name())
	if len(r.Cells) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(CellColumn)
		sb.WriteString(" in (")
		sb.WriteString(joinCells(r.Cells))
		sb.WriteString(")")
	}
	return sb.String()
}

// SelectStatement renders the full query of the plan: the union of all
// per-table reads. Decompaction happens client-side in MergeResults, so no
// grid functions are pushed into the statement.
func (p *QueryPlan) SelectStatement(columns []string) string {
	parts := make([]string, len(p.Reads))
	for i, read := range p.Reads {
		parts[i] = read.SelectStatement(columns)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts, " union all ")
}

func joinCells(cells []h3.Cell) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%d", uint64(cell))
	}
	return strings.Join(parts, ",")
}
