// Package h3cellstore stores datasets gridded to the H3 hexagonal grid in
// ClickHouse and answers cell queries against them.
//
// A dataset ("table set") is materialized as one physical table per H3
// resolution: dense base tables holding one row per cell, and optional
// compacted tables holding the space-saving mixed-resolution form in which
// complete sibling groups are replaced by their parent cell. Table names
// encode basename, resolution and kind ("water_05_base",
// "water_03_compacted"), so table sets can be rediscovered from the
// database catalog alone.
//
// # Packages
//
//   - pkg/compaction: the compaction and decompaction algorithms over cell
//     slices
//   - pkg/colvec: typed columns and row-aligned column sets, the exchange
//     format between the database layer and callers
//   - pkg/tableset: table naming, table set modeling, schema declarations
//     with DDL generation, query planning and client-side decompaction of
//     results
//   - pkg/window: neighborhood iteration and window resolution selection
//   - pkg/geom: convex hulls around cell sets
//   - pkg/clickhouse: the database client, catalog discovery and the query
//     execution path
//   - pkg/plancache: compressed persistence of plans, table sets and
//     schemas
//
// # Quick start
//
// Query a table set at resolution 8:
//
//	conn, err := clickhouse.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	tableSets, err := clickhouse.ListTableSets(ctx, conn)
//	if err != nil {
//	    return err
//	}
//
//	result, err := clickhouse.QueryCells(ctx, conn, tableSets["water"], 8, cells,
//	    tableset.PlannerOptions{})
//
// The planner reads the best fitting physical table: a base table at the
// query resolution when one exists, otherwise a compacted table whose rows
// are decompacted client side, each parent row broadcast to its
// descendants at the query resolution.
package h3cellstore
