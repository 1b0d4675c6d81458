package clickhouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/logger"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/tableset"
)

// catalogEntry is one row of the system.columns catalog.
type catalogEntry struct {
	Table  string
	Column string
	Type   string
}

const catalogQuery = `select table, name, type from system.columns where database = currentDatabase()`

// ListTableSets discovers the table sets of the current database: all
// tables carrying a UInt64 cell column whose names follow the naming
// scheme, grouped by basename. The data columns of a set are the columns
// present with the same type in every table of the set.
func ListTableSets(ctx context.Context, conn *Conn) (map[string]*tableset.TableSet, error) {
	rows, err := conn.conn.Query(ctx, catalogQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []catalogEntry
	for rows.Next() {
		var entry catalogEntry
		if err := rows.Scan(&entry.Table, &entry.Column, &entry.Type); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildTableSets(entries), nil
}

// buildTableSets groups catalog entries into table sets. Tables without a
// UInt64 cell column are ignored, as are columns not shared by the whole
// set.
func buildTableSets(entries []catalogEntry) map[string]*tableset.TableSet {
	cellTables := make(map[string]struct{})
	for _, entry := range entries {
		if entry.Column == tableset.CellColumn && entry.Type == "UInt64" {
			cellTables[entry.Table] = struct{}{}
		}
	}

	names := make([]string, 0, len(cellTables))
	for name := range cellTables {
		names = append(names, name)
	}
	tableSets := tableset.FindTableSets(names)

	for basename, ts := range tableSets {
		members := make(map[string]struct{}, ts.NumTables())
		for _, table := range ts.Tables() {
			members[table.Name()] = struct{}{}
		}

		// count how many member tables carry each (column, type) pair
		counts := make(map[catalogEntry]int)
		for _, entry := range entries {
			if _, ok := members[entry.Table]; !ok {
				continue
			}
			if entry.Column == tableset.CellColumn {
				continue
			}
			key := catalogEntry{Column: entry.Column, Type: entry.Type}
			counts[key]++
		}
		for key, count := range counts {
			if count == ts.NumTables() {
				ts.Columns[key.Column] = key.Type
			} else {
				logger.Warn("column is not present with the same type in all tables of the set, ignoring it",
					zap.String("tableset", basename),
					zap.String("column", fmt.Sprintf("%s %s", key.Column, key.Type)),
				)
			}
		}
	}
	return tableSets
}
