package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	h3 "github.com/uber/h3-go/v4"
	"gopkg.in/yaml.v3"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/clickhouse"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/config"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/logger"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/tableset"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configFile string

	root := &cobra.Command{
		Use:   "h3cellstore",
		Short: "h3cellstore - hexagonal cell storage on ClickHouse",
		Long: `h3cellstore stores datasets gridded to H3 cells in ClickHouse, one table
per resolution, with compacted counterparts for sparse data. It plans and
runs cell queries, discovers table sets and generates table DDL from
schema declarations.`,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("h3cellstore v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "tablesets",
		Short: "List the table sets of the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := connect(configFile)
			if err != nil {
				return err
			}
			defer conn.Close()

			tableSets, err := clickhouse.ListTableSets(cmd.Context(), conn)
			if err != nil {
				return err
			}
			for basename, ts := range tableSets {
				fmt.Printf("%s\n", basename)
				fmt.Printf("  base resolutions:      %v\n", ts.BaseResolutions())
				fmt.Printf("  compacted resolutions: %v\n", ts.CompactedResolutions())
				for _, name := range ts.ColumnNames() {
					fmt.Printf("  column: %s %s\n", name, ts.Columns[name])
				}
			}
			return nil
		},
	})

	var queryTableSet string
	var queryResolution int
	var queryCells []string
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a cell query against a table set",
		Long: `Run a cell query against a table set. Cells are given as hexadecimal
H3 indexes and must all be at the query resolution. Without cells the
query is unbounded.

Example:
  h3cellstore query --tableset water --resolution 8 --cell 881f1d4a87fffff`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := connect(configFile)
			if err != nil {
				return err
			}
			defer conn.Close()

			cells, err := parseCells(queryCells)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), cfg, conn, queryTableSet, queryResolution, cells)
		},
	}
	queryCmd.Flags().StringVarP(&queryTableSet, "tableset", "t", "", "Table set basename (required)")
	queryCmd.Flags().IntVarP(&queryResolution, "resolution", "r", 0, "Query resolution (required)")
	queryCmd.Flags().StringArrayVar(&queryCells, "cell", nil, "Cell as hexadecimal H3 index, repeatable")
	_ = queryCmd.MarkFlagRequired("tableset")
	_ = queryCmd.MarkFlagRequired("resolution")
	root.AddCommand(queryCmd)

	var planTableSet string
	var planResolution int
	var planCells []string
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve a cell query into its physical reads without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := connect(configFile)
			if err != nil {
				return err
			}
			defer conn.Close()

			cells, err := parseCells(planCells)
			if err != nil {
				return err
			}
			return printPlan(cmd.Context(), cfg, conn, planTableSet, planResolution, cells)
		},
	}
	planCmd.Flags().StringVarP(&planTableSet, "tableset", "t", "", "Table set basename (required)")
	planCmd.Flags().IntVarP(&planResolution, "resolution", "r", 0, "Query resolution (required)")
	planCmd.Flags().StringArrayVar(&planCells, "cell", nil, "Cell as hexadecimal H3 index, repeatable")
	_ = planCmd.MarkFlagRequired("tableset")
	_ = planCmd.MarkFlagRequired("resolution")
	root.AddCommand(planCmd)

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with schema declarations",
	}
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a YAML schema declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			ts, err := schema.TableSet()
			if err != nil {
				return err
			}
			fmt.Printf("%s: ok, %d tables\n", schema.Name, ts.NumTables())
			return nil
		},
	})
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "ddl <file>",
		Short: "Print the CREATE TABLE statements of a schema declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			statements, err := schema.CreateStatements("")
			if err != nil {
				return err
			}
			for _, stmt := range statements {
				fmt.Printf("%s;\n\n", stmt)
			}
			return nil
		},
	})
	root.AddCommand(schemaCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect loads the configuration, initializes logging and opens the
// database connection.
func connect(configFile string) (*config.Config, *clickhouse.Conn, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Format,
	}); err != nil {
		return nil, nil, err
	}

	conn, err := clickhouse.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

func parseCells(args []string) ([]h3.Cell, error) {
	cells := make([]h3.Cell, 0, len(args))
	for _, arg := range args {
		value, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cell %q: %w", arg, err)
		}
		cells = append(cells, h3.Cell(value))
	}
	return cells, nil
}

func runQuery(ctx context.Context, cfg *config.Config, conn *clickhouse.Conn,
	basename string, resolution int, cells []h3.Cell) error {

	tableSets, err := clickhouse.ListTableSets(ctx, conn)
	if err != nil {
		return err
	}
	ts, ok := tableSets[basename]
	if !ok {
		return fmt.Errorf("table set %q not found", basename)
	}

	result, err := clickhouse.QueryCells(ctx, conn, ts, resolution, cells, tableset.PlannerOptions{
		AllowCoarser: cfg.Query.AllowCoarser,
		MaxFanout:    cfg.Query.MaxFanout,
	})
	if err != nil {
		return err
	}

	names := result.Names()
	fmt.Println(strings.Join(names, "\t"))
	for i := 0; i < result.Len(); i++ {
		row := make([]string, len(names))
		for j, name := range names {
			col, _ := result.Column(name)
			if name == tableset.CellColumn {
				row[j] = fmt.Sprintf("%x", col.Value(i))
			} else {
				row[j] = fmt.Sprintf("%v", col.Value(i))
			}
		}
		fmt.Println(strings.Join(row, "\t"))
	}
	return nil
}

func printPlan(ctx context.Context, cfg *config.Config, conn *clickhouse.Conn,
	basename string, resolution int, cells []h3.Cell) error {

	tableSets, err := clickhouse.ListTableSets(ctx, conn)
	if err != nil {
		return err
	}
	ts, ok := tableSets[basename]
	if !ok {
		return fmt.Errorf("table set %q not found", basename)
	}

	plan, err := tableset.Resolve(ts, resolution, cells, tableset.PlannerOptions{
		AllowCoarser: cfg.Query.AllowCoarser,
		MaxFanout:    cfg.Query.MaxFanout,
	})
	if err != nil {
		return err
	}

	fmt.Printf("resolution: %d\n", plan.Resolution)
	if plan.Relaxed {
		fmt.Printf("relaxed to: %d\n", plan.EffectiveResolution)
	}
	for _, read := range plan.Reads {
		fmt.Printf("read: %s (cells: %d, uncompact: %v)\n",
			read.Table.Name(), len(read.Cells), read.Uncompact)
		fmt.Printf("  %s\n", read.SelectStatement(ts.ColumnNames()))
	}
	return nil
}

// loadSchema reads a YAML schema declaration and validates it.
func loadSchema(filename string) (*tableset.Schema, error) {
	data, err := os.ReadFile(filename) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", filename, err)
	}
	var schema tableset.Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", filename, err)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}
