package clickhouse

import (
	"context"
	"time"

	h3 "github.com/uber/h3-go/v4"
	"go.uber.org/zap"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/colvec"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/logger"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/metrics"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/tableset"
)

// QueryCells answers a cell query against a table set: resolve the plan,
// execute one select per physical read and merge the batches back to a
// resolution-uniform column set. Cells may be nil for an unbounded query.
func QueryCells(ctx context.Context, client Client, ts *tableset.TableSet,
	queryResolution int, cells []h3.Cell, opts tableset.PlannerOptions) (*colvec.ColumnSet, error) {

	start := time.Now()

	plan, err := tableset.Resolve(ts, queryResolution, cells, opts)
	if err != nil {
		metrics.QueriesPlanned.WithLabelValues(ts.Basename, "rejected").Inc()
		return nil, err
	}
	metrics.QueriesPlanned.WithLabelValues(ts.Basename, planOutcome(plan)).Inc()
	metrics.DecompactionFanout.Observe(float64(fanoutSteps(plan)))

	log := logger.WithContext(ctx).With(
		zap.String("tableset", ts.Basename),
		zap.Int("resolution", queryResolution),
		zap.Int("reads", len(plan.Reads)),
	)
	log.Debug("executing query plan")

	columns := ts.ColumnNames()
	batches := make([]*colvec.ColumnSet, len(plan.Reads))
	for i, read := range plan.Reads {
		batch, err := client.Execute(ctx, read.SelectStatement(columns))
		if err != nil {
			return nil, err
		}
		metrics.ReadsExecuted.WithLabelValues(ts.Basename, string(read.Table.Spec.Kind)).Inc()
		batches[i] = batch
	}

	merged, err := tableset.MergeResults(plan, batches)
	if err != nil {
		return nil, err
	}

	metrics.RowsReturned.WithLabelValues(ts.Basename).Add(float64(merged.Len()))
	if uncompacted := uncompactedRows(plan, batches, merged); uncompacted > 0 {
		metrics.RowsUncompacted.WithLabelValues(ts.Basename).Add(float64(uncompacted))
	}
	metrics.ObserveSince(metrics.QueryDuration.WithLabelValues(ts.Basename), start)

	log.Debug("query plan executed",
		zap.Int("rows", merged.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return merged, nil
}

func planOutcome(plan *tableset.QueryPlan) string {
	switch {
	case plan.Relaxed:
		return "relaxed"
	case len(plan.Reads) > 0 && plan.Reads[0].Uncompact:
		return "uncompact"
	default:
		return "direct"
	}
}

// fanoutSteps is the resolution distance bridged by decompaction.
func fanoutSteps(plan *tableset.QueryPlan) int {
	steps := 0
	for _, read := range plan.Reads {
		if !read.Uncompact {
			continue
		}
		if d := plan.Resolution - read.Table.Spec.Resolution; d > steps {
			steps = d
		}
	}
	return steps
}

// uncompactedRows counts the rows the merge step produced beyond what the
// database returned.
func uncompactedRows(plan *tableset.QueryPlan, batches []*colvec.ColumnSet, merged *colvec.ColumnSet) int {
	fetched := 0
	for i, batch := range batches {
		if batch == nil || !plan.Reads[i].Uncompact {
			continue
		}
		fetched += batch.Len()
	}
	if fetched == 0 {
		return 0
	}
	return merged.Len() - fetched
}
