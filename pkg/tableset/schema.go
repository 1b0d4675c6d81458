package tableset

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/h3res"
)

// DataType is the supported subset of database column types.
type DataType string

const (
	TypeUInt8    DataType = "UInt8"
	TypeInt8     DataType = "Int8"
	TypeUInt16   DataType = "UInt16"
	TypeInt16    DataType = "Int16"
	TypeUInt32   DataType = "UInt32"
	TypeInt32    DataType = "Int32"
	TypeUInt64   DataType = "UInt64"
	TypeInt64    DataType = "Int64"
	TypeFloat32  DataType = "Float32"
	TypeFloat64  DataType = "Float64"
	TypeDate     DataType = "Date"
	TypeDateTime DataType = "DateTime"
	TypeString   DataType = "String"
)

// IsTemporal reports whether the type carries a point in time.
func (d DataType) IsTemporal() bool {
	return d == TypeDate || d == TypeDateTime
}

// IsNumber reports whether the type is an integer or float type.
func (d DataType) IsNumber() bool {
	switch d {
	case TypeUInt8, TypeInt8, TypeUInt16, TypeInt16, TypeUInt32, TypeInt32,
		TypeUInt64, TypeInt64, TypeFloat32, TypeFloat64:
		return true
	}
	return false
}

// AggregationMethod describes how a column's values combine when coarser
// resolutions are generated from finer ones.
type AggregationMethod string

const (
	AggNone               AggregationMethod = ""
	AggSum                AggregationMethod = "sum"
	AggMin                AggregationMethod = "min"
	AggMax                AggregationMethod = "max"
	AggAverage            AggregationMethod = "average"
	AggRelativeToCellArea AggregationMethod = "relativetocellarea"
)

// ApplicableTo reports whether the method can aggregate the given type.
func (a AggregationMethod) ApplicableTo(d DataType) bool {
	switch a {
	case AggNone:
		return true
	case AggSum, AggRelativeToCellArea:
		return d.IsNumber() && !d.IsTemporal()
	case AggMin, AggMax, AggAverage:
		return d.IsNumber()
	}
	return false
}

// EngineKind selects the MergeTree variant backing the tables.
type EngineKind string

const (
	EngineReplacingMergeTree   EngineKind = "ReplacingMergeTree"
	EngineSummingMergeTree     EngineKind = "SummingMergeTree"
	EngineAggregatingMergeTree EngineKind = "AggregatingMergeTree"
)

// TableEngine is the storage engine of all tables of a schema. SumColumns
// is only meaningful for SummingMergeTree.
type TableEngine struct {
	Kind       EngineKind `json:"kind" yaml:"kind"`
	SumColumns []string   `json:"sum_columns,omitempty" yaml:"sum_columns,omitempty"`
}

// Expression renders the engine clause of a create statement.
func (e TableEngine) Expression() string {
	if e.Kind == EngineSummingMergeTree {
		return fmt.Sprintf("SummingMergeTree(%s)", strings.Join(e.SumColumns, ", "))
	}
	return string(e.Kind)
}

// CompressionMethod is the column codec applied to a schema's tables.
type CompressionMethod struct {
	Codec string `json:"codec" yaml:"codec"`
	Level int    `json:"level,omitempty" yaml:"level,omitempty"`
}

const (
	CodecLZ4HC       = "LZ4HC"
	CodecZSTD        = "ZSTD"
	CodecDelta       = "Delta"
	CodecDoubleDelta = "DoubleDelta"
	CodecGorilla     = "Gorilla"
	CodecT64         = "T64"
)

// DefaultCompression is used when a schema declares no codec.
func DefaultCompression() CompressionMethod {
	return CompressionMethod{Codec: CodecZSTD, Level: 6}
}

// Expression renders the codec for a CODEC() clause.
func (c CompressionMethod) Expression() string {
	switch c.Codec {
	case CodecLZ4HC, CodecZSTD, CodecDelta:
		return fmt.Sprintf("%s(%d)", c.Codec, c.Level)
	}
	return c.Codec
}

// Validate checks codec name and level ranges.
//
// https://clickhouse.com/docs/en/sql-reference/statements/create/table#general-purpose-codecs
func (c CompressionMethod) Validate() error {
	switch c.Codec {
	case CodecZSTD:
		if c.Level < 1 || c.Level > 22 {
			return errors.Newf(errors.ErrorTypeSchema, "ZSTD compression level %d out of range", c.Level)
		}
	case CodecLZ4HC:
		if c.Level < 1 || c.Level > 9 {
			return errors.Newf(errors.ErrorTypeSchema, "LZ4HC compression level %d out of range", c.Level)
		}
	case CodecDelta:
		switch c.Level {
		case 1, 2, 4, 8:
		default:
			return errors.Newf(errors.ErrorTypeSchema, "unsupported delta width %d", c.Level)
		}
	case CodecDoubleDelta, CodecGorilla, CodecT64:
	default:
		return errors.Newf(errors.ErrorTypeSchema, "unknown compression codec %q", c.Codec)
	}
	return nil
}

// TemporalPartitioning controls how temporal columns contribute to table
// partitioning expressions.
type TemporalPartitioning struct {
	// Unit is "month" or "years".
	Unit string `json:"unit" yaml:"unit"`
	// NumYears groups that many years into one partition, only meaningful
	// with Unit "years".
	NumYears int `json:"num_years,omitempty" yaml:"num_years,omitempty"`
}

const (
	PartitionByMonth = "month"
	PartitionByYears = "years"
)

// Validate checks the partitioning unit and year grouping.
func (t TemporalPartitioning) Validate() error {
	switch t.Unit {
	case PartitionByMonth:
	case PartitionByYears:
		if t.NumYears < 1 {
			return errors.New(errors.ErrorTypeSchema, "number of years per partition must be > 0")
		}
	default:
		return errors.Newf(errors.ErrorTypeSchema, "unknown temporal partitioning unit %q", t.Unit)
	}
	return nil
}

// expression renders the partition expression for one temporal column.
func (t TemporalPartitioning) expression(columnName string) string {
	switch t.Unit {
	case PartitionByYears:
		if t.NumYears > 1 {
			// one partition spans NumYears consecutive years
			return fmt.Sprintf("toString(floor(toYear(%s)/%d)*%d)", columnName, t.NumYears, t.NumYears)
		}
		return fmt.Sprintf("toString(toYear(%s))", columnName)
	default:
		return fmt.Sprintf("toString(toMonth(%s))", columnName)
	}
}

// ColumnDef declares one data column of a schema.
type ColumnDef struct {
	Type DataType `json:"type" yaml:"type"`

	// Aggregation is applied when generating coarser resolutions from the
	// finest one. AggNone stores values unchanged.
	Aggregation AggregationMethod `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`

	// OrderKey places the column into the table's sorting key at the
	// given position. Nil keeps it out of the key. The cell column is
	// always part of the key regardless of this setting.
	OrderKey *int `json:"order_key,omitempty" yaml:"order_key,omitempty"`

	// Nullable is rejected by Validate: the query path has no null
	// representation, so a Nullable(T) table could never be read back.
	// The field exists so declarations setting it fail loudly instead of
	// being dropped by the decoder.
	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// Validate checks that the aggregation fits the column type and that the
// column stays readable by the query path.
func (c ColumnDef) Validate() error {
	if c.Nullable {
		return errors.New(errors.ErrorTypeSchema, "nullable columns are not supported")
	}
	if !c.Aggregation.ApplicableTo(c.Type) {
		return errors.Newf(errors.ErrorTypeSchema,
			"aggregation %s can not be applied to datatype %s", c.Aggregation, c.Type)
	}
	return nil
}

func (c ColumnDef) sqlType() string {
	return string(c.Type)
}

// Schema declares how one dataset is materialized: its name, the base
// resolutions, whether compacted counterparts are kept, engine, codec,
// partitioning and the data columns. A validated schema is the source for
// both DDL generation and the TableSet used at query time.
type Schema struct {
	Name                 string               `json:"name" yaml:"name"`
	Engine               TableEngine          `json:"engine" yaml:"engine"`
	Compression          CompressionMethod    `json:"compression" yaml:"compression"`
	BaseResolutions      []int                `json:"base_resolutions" yaml:"base_resolutions"`
	UseCompaction        bool                 `json:"use_compaction" yaml:"use_compaction"`
	TemporalPartitioning TemporalPartitioning `json:"temporal_partitioning" yaml:"temporal_partitioning"`

	// PartitionColumns lists extra columns for the partitioning key. When
	// empty, a single temporal column is picked up automatically.
	PartitionColumns []string `json:"partition_columns,omitempty" yaml:"partition_columns,omitempty"`

	Columns map[string]ColumnDef `json:"columns" yaml:"columns"`
}

// NewSchema creates a schema with the mandatory cell column and defaults:
// ReplacingMergeTree, ZSTD(6), monthly temporal partitioning, compaction
// enabled.
func NewSchema(name string) *Schema {
	return &Schema{
		Name:                 name,
		Engine:               TableEngine{Kind: EngineReplacingMergeTree},
		Compression:          DefaultCompression(),
		UseCompaction:        true,
		TemporalPartitioning: TemporalPartitioning{Unit: PartitionByMonth},
		Columns: map[string]ColumnDef{
			CellColumn: {Type: TypeUInt64},
		},
	}
}

// AddColumn adds or replaces a data column.
func (s *Schema) AddColumn(name string, def ColumnDef) *Schema {
	s.Columns[name] = def
	return s
}

var schemaNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z_0-9]+$`)

// Validate checks the whole schema: the name, codec, partitioning, the
// mandatory cell column, engine, resolutions, column definitions and that
// a usable partitioning expression can be built.
func (s *Schema) Validate() error {
	if !schemaNameRe.MatchString(s.Name) {
		return errors.Newf(errors.ErrorTypeSchema, "invalid table name %q", s.Name)
	}
	if err := s.Compression.Validate(); err != nil {
		return err
	}
	if err := s.TemporalPartitioning.Validate(); err != nil {
		return err
	}

	cell, ok := s.Columns[CellColumn]
	if !ok {
		return errors.Newf(errors.ErrorTypeSchema, "mandatory column %s is missing", CellColumn)
	}
	if cell.Type != TypeUInt64 || cell.Nullable {
		return errors.Newf(errors.ErrorTypeSchema, "column %s must be a non-nullable UInt64", CellColumn)
	}

	if s.Engine.Kind == EngineSummingMergeTree {
		for _, sumCol := range s.Engine.SumColumns {
			if _, ok := s.Columns[sumCol]; !ok {
				return errors.Newf(errors.ErrorTypeSchema,
					"SummingMergeTree engine references missing column %s", sumCol)
			}
		}
	}

	if len(s.BaseResolutions) == 0 {
		return errors.New(errors.ErrorTypeSchema, "at least one base resolution is required")
	}
	if _, err := h3res.Normalize(s.BaseResolutions); err != nil {
		return err
	}

	for name, def := range s.Columns {
		if err := def.Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeSchema, "column %s", name)
		}
	}

	_, err := s.PartitionExpressions()
	return err
}

// MaxResolution returns the finest base resolution, or -1 when none are
// declared.
func (s *Schema) MaxResolution() int {
	max := -1
	for _, res := range s.BaseResolutions {
		if res > max {
			max = res
		}
	}
	return max
}

// TableSet derives the queryable table set of the schema: base tables at
// all base resolutions plus, with compaction enabled, compacted tables at
// every resolution up to the finest base resolution.
func (s *Schema) TableSet() (*TableSet, error) {
	var compacted []int
	if s.UseCompaction {
		for res := h3res.MinResolution; res <= s.MaxResolution(); res++ {
			compacted = append(compacted, res)
		}
	}
	ts, err := NewTableSet(s.Name, s.BaseResolutions, compacted)
	if err != nil {
		return nil, err
	}
	for name, def := range s.Columns {
		if name == CellColumn {
			continue
		}
		ts.Columns[name] = def.sqlType()
	}
	return ts, nil
}

// OrderByColumns returns the sorting key of the tables: the cell column
// first, then the columns with an order key position, by position and name.
func (s *Schema) OrderByColumns() []string {
	type keyed struct {
		pos  int
		name string
	}
	var keys []keyed
	for name, def := range s.Columns {
		switch {
		case name == CellColumn:
			// location first, it is the dominant lookup criteria
			keys = append(keys, keyed{pos: -100, name: name})
		case def.OrderKey != nil:
			keys = append(keys, keyed{pos: *def.OrderKey, name: name})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pos != keys[j].pos {
			return keys[i].pos < keys[j].pos
		}
		return keys[i].name < keys[j].name
	})
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// PartitionExpressions returns the partitioning key of the tables. The
// base cell of the cell column always leads; temporal columns follow per
// the temporal partitioning. Without explicit partition columns a single
// temporal column is picked automatically, more than one is an error.
func (s *Schema) PartitionExpressions() ([]string, error) {
	expressions := []string{fmt.Sprintf("h3GetBaseCell(%s)", CellColumn)}

	if len(s.PartitionColumns) == 0 {
		var temporal []string
		for name, def := range s.Columns {
			if def.Type.IsTemporal() {
				temporal = append(temporal, name)
			}
		}
		if len(temporal) > 1 {
			return nil, errors.New(errors.ErrorTypeSchema,
				"found multiple temporal columns, explicit partition columns required")
		}
		for _, name := range temporal {
			expressions = append(expressions, s.TemporalPartitioning.expression(name))
		}
		return expressions, nil
	}

	for _, name := range s.PartitionColumns {
		def, ok := s.Columns[name]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchema, "partition column %s is not declared", name)
		}
		expr := name
		if def.Type.IsTemporal() {
			expr = s.TemporalPartitioning.expression(name)
		}
		if !contains(expressions, expr) {
			expressions = append(expressions, expr)
		}
	}
	return expressions, nil
}

// schemaTables returns all physical tables the schema materializes, bound
// to temporaryKey when non-empty.
func (s *Schema) schemaTables(temporaryKey string) ([]Table, error) {
	ts, err := s.TableSet()
	if err != nil {
		return nil, err
	}
	tables := ts.Tables()
	if temporaryKey != "" {
		for i := range tables {
			tables[i].Spec.TemporaryKey = temporaryKey
		}
	}
	return tables, nil
}

// CreateStatements renders the DDL creating every table of the schema.
// With a non-empty temporaryKey the statements create the ingestion-time
// variants instead; those skip partitioning.
func (s *Schema) CreateStatements(temporaryKey string) ([]string, error) {
	tables, err := s.schemaTables(temporaryKey)
	if err != nil {
		return nil, err
	}

	columnNames := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		columnNames = append(columnNames, name)
	}
	sort.Strings(columnNames)

	codec := s.Compression.Expression()
	columnClauses := make([]string, len(columnNames))
	for i, name := range columnNames {
		columnClauses[i] = fmt.Sprintf("  %s %s CODEC(%s)", name, s.Columns[name].sqlType(), codec)
	}

	partitionClause := ""
	if temporaryKey == "" {
		expressions, err := s.PartitionExpressions()
		if err != nil {
			return nil, err
		}
		partitionClause = fmt.Sprintf(" PARTITION BY (%s)", strings.Join(expressions, ", "))
	}
	orderBy := strings.Join(s.OrderByColumns(), ", ")

	statements := make([]string, len(tables))
	for i, table := range tables {
		statements[i] = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (\n%s\n) ENGINE %s%s ORDER BY (%s)",
			table.Name(), strings.Join(columnClauses, ",\n"), s.Engine.Expression(),
			partitionClause, orderBy,
		)
	}
	return statements, nil
}

// DropStatements renders the DDL dropping every table of the schema, or
// its temporary variants when temporaryKey is non-empty.
func (s *Schema) DropStatements(temporaryKey string) ([]string, error) {
	tables, err := s.schemaTables(temporaryKey)
	if err != nil {
		return nil, err
	}
	statements := make([]string, len(tables))
	for i, table := range tables {
		statements[i] = fmt.Sprintf("DROP TABLE IF EXISTS %s", table.Name())
	}
	return statements, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
