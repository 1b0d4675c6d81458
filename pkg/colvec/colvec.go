// Package colvec provides the typed columnar value container used to move
// query results between the cell store and the columnar database.
//
// A Column is a homogeneous sequence of primitive values together with a
// stable type tag. The closed set of variants covers the unsigned and signed
// integer widths, both floating point widths, and two temporal variants
// (Date, DateTime) that carry unix timestamps as int64 because the
// downstream interchange layer has no native temporal type. The tag is
// load-bearing: consumers key on it to render or convert values, so it is a
// contract surface and must never change.
//
// Columns never coerce between variants. Converting values is the caller's
// responsibility and happens outside this package.
package colvec

import (
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// Column is a homogeneous sequence of values with a stable type tag.
// Index i of every column of a ColumnSet belongs to the same logical row.
type Column interface {
	// TypeName returns the stable lowercase tag of the variant, one of
	// "u8", "i8", "u16", "i16", "u32", "i32", "u64", "i64", "f32", "f64",
	// "date", "datetime".
	TypeName() string
	// Len returns the number of values.
	Len() int
	// Value returns the value at index i as its native Go type.
	Value(i int) interface{}

	repeat(counts []int) Column
	concat(other Column) Column
}

// The closed variant set. Each type owns its sequence.
type (
	// UInt8Column carries uint8 values, tag "u8".
	UInt8Column []uint8
	// Int8Column carries int8 values, tag "i8".
	Int8Column []int8
	// UInt16Column carries uint16 values, tag "u16".
	UInt16Column []uint16
	// Int16Column carries int16 values, tag "i16".
	Int16Column []int16
	// UInt32Column carries uint32 values, tag "u32".
	UInt32Column []uint32
	// Int32Column carries int32 values, tag "i32".
	Int32Column []int32
	// UInt64Column carries uint64 values, tag "u64".
	UInt64Column []uint64
	// Int64Column carries int64 values, tag "i64".
	Int64Column []int64
	// Float32Column carries float32 values, tag "f32".
	Float32Column []float32
	// Float64Column carries float64 values, tag "f64".
	Float64Column []float64
	// DateColumn carries unix timestamps (seconds) of dates, tag "date".
	DateColumn []int64
	// DateTimeColumn carries unix timestamps (seconds), tag "datetime".
	DateTimeColumn []int64
)

func (c UInt8Column) TypeName() string    { return "u8" }
func (c Int8Column) TypeName() string     { return "i8" }
func (c UInt16Column) TypeName() string   { return "u16" }
func (c Int16Column) TypeName() string    { return "i16" }
func (c UInt32Column) TypeName() string   { return "u32" }
func (c Int32Column) TypeName() string    { return "i32" }
func (c UInt64Column) TypeName() string   { return "u64" }
func (c Int64Column) TypeName() string    { return "i64" }
func (c Float32Column) TypeName() string  { return "f32" }
func (c Float64Column) TypeName() string  { return "f64" }
func (c DateColumn) TypeName() string     { return "date" }
func (c DateTimeColumn) TypeName() string { return "datetime" }

func (c UInt8Column) Len() int    { return len(c) }
func (c Int8Column) Len() int     { return len(c) }
func (c UInt16Column) Len() int   { return len(c) }
func (c Int16Column) Len() int    { return len(c) }
func (c UInt32Column) Len() int   { return len(c) }
func (c Int32Column) Len() int    { return len(c) }
func (c UInt64Column) Len() int   { return len(c) }
func (c Int64Column) Len() int    { return len(c) }
func (c Float32Column) Len() int  { return len(c) }
func (c Float64Column) Len() int  { return len(c) }
func (c DateColumn) Len() int     { return len(c) }
func (c DateTimeColumn) Len() int { return len(c) }

func (c UInt8Column) Value(i int) interface{}    { return c[i] }
func (c Int8Column) Value(i int) interface{}     { return c[i] }
func (c UInt16Column) Value(i int) interface{}   { return c[i] }
func (c Int16Column) Value(i int) interface{}    { return c[i] }
func (c UInt32Column) Value(i int) interface{}   { return c[i] }
func (c Int32Column) Value(i int) interface{}    { return c[i] }
func (c UInt64Column) Value(i int) interface{}   { return c[i] }
func (c Int64Column) Value(i int) interface{}    { return c[i] }
func (c Float32Column) Value(i int) interface{}  { return c[i] }
func (c Float64Column) Value(i int) interface{}  { return c[i] }
func (c DateColumn) Value(i int) interface{}     { return c[i] }
func (c DateTimeColumn) Value(i int) interface{} { return c[i] }

func (c UInt8Column) repeat(counts []int) Column    { return UInt8Column(repeatValues(c, counts)) }
func (c Int8Column) repeat(counts []int) Column     { return Int8Column(repeatValues(c, counts)) }
func (c UInt16Column) repeat(counts []int) Column   { return UInt16Column(repeatValues(c, counts)) }
func (c Int16Column) repeat(counts []int) Column    { return Int16Column(repeatValues(c, counts)) }
func (c UInt32Column) repeat(counts []int) Column   { return UInt32Column(repeatValues(c, counts)) }
func (c Int32Column) repeat(counts []int) Column    { return Int32Column(repeatValues(c, counts)) }
func (c UInt64Column) repeat(counts []int) Column   { return UInt64Column(repeatValues(c, counts)) }
func (c Int64Column) repeat(counts []int) Column    { return Int64Column(repeatValues(c, counts)) }
func (c Float32Column) repeat(counts []int) Column  { return Float32Column(repeatValues(c, counts)) }
func (c Float64Column) repeat(counts []int) Column  { return Float64Column(repeatValues(c, counts)) }
func (c DateColumn) repeat(counts []int) Column     { return DateColumn(repeatValues(c, counts)) }
func (c DateTimeColumn) repeat(counts []int) Column { return DateTimeColumn(repeatValues(c, counts)) }

func (c UInt8Column) concat(o Column) Column   { return UInt8Column(concatValues(c, o.(UInt8Column))) }
func (c Int8Column) concat(o Column) Column    { return Int8Column(concatValues(c, o.(Int8Column))) }
func (c UInt16Column) concat(o Column) Column  { return UInt16Column(concatValues(c, o.(UInt16Column))) }
func (c Int16Column) concat(o Column) Column   { return Int16Column(concatValues(c, o.(Int16Column))) }
func (c UInt32Column) concat(o Column) Column  { return UInt32Column(concatValues(c, o.(UInt32Column))) }
func (c Int32Column) concat(o Column) Column   { return Int32Column(concatValues(c, o.(Int32Column))) }
func (c UInt64Column) concat(o Column) Column  { return UInt64Column(concatValues(c, o.(UInt64Column))) }
func (c Int64Column) concat(o Column) Column   { return Int64Column(concatValues(c, o.(Int64Column))) }
func (c Float32Column) concat(o Column) Column { return Float32Column(concatValues(c, o.(Float32Column))) }
func (c Float64Column) concat(o Column) Column { return Float64Column(concatValues(c, o.(Float64Column))) }
func (c DateColumn) concat(o Column) Column    { return DateColumn(concatValues(c, o.(DateColumn))) }
func (c DateTimeColumn) concat(o Column) Column {
	return DateTimeColumn(concatValues(c, o.(DateTimeColumn)))
}

// concatValues copies both inputs into a freshly allocated slice. The
// result must never share a backing array with either input.
func concatValues[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// repeatValues broadcasts each value i of in counts[i] times. len(counts)
// must equal len(in).
func repeatValues[T any](in []T, counts []int) []T {
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make([]T, 0, total)
	for i, v := range in {
		for n := 0; n < counts[i]; n++ {
			out = append(out, v)
		}
	}
	return out
}

// Repeat returns a new column where row i of col is duplicated counts[i]
// times. This is the broadcast step of decompaction: every expanded
// descendant row carries an identical copy of the parent row's value.
func Repeat(col Column, counts []int) (Column, error) {
	if col.Len() != len(counts) {
		return nil, errors.NewDifferentColumnLength(col.TypeName(), col.Len(), len(counts))
	}
	return col.repeat(counts), nil
}

// Concat appends the values of b to a. Both columns must be the same
// variant; the tag distinction between i64, date and datetime is preserved.
func Concat(a, b Column) (Column, error) {
	if a.TypeName() != b.TypeName() {
		return nil, errors.NewColumnTypeMismatch(a.TypeName(), b.TypeName())
	}
	return a.concat(b), nil
}
