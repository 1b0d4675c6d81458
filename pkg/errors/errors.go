// Package errors provides structured error handling for the cell store.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents validation errors (bad resolutions, cells, inputs)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeData represents data shape errors (column lengths, type mismatches)
	ErrorTypeData ErrorType = "data"
	// ErrorTypeQuery represents query planning and execution errors
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeSchema represents schema definition errors
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeSerialization represents encoding/decoding errors
	ErrorTypeSerialization ErrorType = "serialization"
	// ErrorTypeConnection represents database connection errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns the value stored under key, or nil
func (e *Error) Detail(key string) interface{} {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return New(errType, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted context
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// Messages for the well-known error conditions of the cell store. The
// constructors below attach the offending values as details so callers can
// report them without string parsing.
const (
	msgInvalidResolution     = "invalid h3 resolution"
	msgInvalidCell           = "invalid h3 cell"
	msgMixedResolutions      = "cells with mixed resolutions"
	msgResolutionTooCoarse   = "target resolution is coarser than the cell resolution"
	msgNoQueryableTable      = "no queryable table found"
	msgColumnTypeMismatch    = "column type mismatch"
	msgEmptyCells            = "no cells given"
	msgDifferentColumnLength = "column length differs from the column set"
)

// NewInvalidResolution reports a resolution outside the valid range.
func NewInvalidResolution(resolution int) *Error {
	return Newf(ErrorTypeValidation, "%s: %d", msgInvalidResolution, resolution).
		WithDetail("resolution", resolution)
}

// NewInvalidCell reports a cell identifier that does not decode to a legal cell.
func NewInvalidCell(cell uint64) *Error {
	return Newf(ErrorTypeValidation, "%s: %x", msgInvalidCell, cell).
		WithDetail("cell", cell)
}

// NewMixedResolutions reports an input set spanning more than one resolution
// where a uniform resolution is required.
func NewMixedResolutions(expected, found int) *Error {
	return Newf(ErrorTypeValidation, "%s: expected %d, found %d", msgMixedResolutions, expected, found).
		WithDetail("expected", expected).
		WithDetail("found", found)
}

// NewResolutionTooCoarse reports an uncompact target above the cell resolution.
func NewResolutionTooCoarse(cellResolution, targetResolution int) *Error {
	return Newf(ErrorTypeValidation, "%s: cell resolution %d, target %d",
		msgResolutionTooCoarse, cellResolution, targetResolution).
		WithDetail("cell_resolution", cellResolution).
		WithDetail("target_resolution", targetResolution)
}

// NewNoQueryableTable reports that no table of a set can answer a query resolution.
func NewNoQueryableTable(basename string, resolution int) *Error {
	return Newf(ErrorTypeQuery, "%s: tableset %q, resolution %d", msgNoQueryableTable, basename, resolution).
		WithDetail("basename", basename).
		WithDetail("resolution", resolution)
}

// NewColumnTypeMismatch reports an unexpected column variant.
func NewColumnTypeMismatch(expected, actual string) *Error {
	return Newf(ErrorTypeData, "%s: expected %s, got %s", msgColumnTypeMismatch, expected, actual).
		WithDetail("expected", expected).
		WithDetail("actual", actual)
}

// NewEmptyCells reports an operation invoked without any cells.
func NewEmptyCells() *Error {
	return New(ErrorTypeValidation, msgEmptyCells)
}

// NewDifferentColumnLength reports a column whose length breaks row alignment.
func NewDifferentColumnLength(column string, expected, found int) *Error {
	return Newf(ErrorTypeData, "%s: column %q expected %d, found %d",
		msgDifferentColumnLength, column, expected, found).
		WithDetail("column", column).
		WithDetail("expected", expected).
		WithDetail("found", found)
}

// IsInvalidResolution reports whether err is an invalid-resolution error.
func IsInvalidResolution(err error) bool { return hasMessage(err, msgInvalidResolution) }

// IsInvalidCell reports whether err is an invalid-cell error.
func IsInvalidCell(err error) bool { return hasMessage(err, msgInvalidCell) }

// IsMixedResolutions reports whether err is a mixed-resolutions error.
func IsMixedResolutions(err error) bool { return hasMessage(err, msgMixedResolutions) }

// IsResolutionTooCoarse reports whether err is a resolution-too-coarse error.
func IsResolutionTooCoarse(err error) bool { return hasMessage(err, msgResolutionTooCoarse) }

// IsNoQueryableTable reports whether err is a no-queryable-table error.
func IsNoQueryableTable(err error) bool { return hasMessage(err, msgNoQueryableTable) }

// IsColumnTypeMismatch reports whether err is a column-type-mismatch error.
func IsColumnTypeMismatch(err error) bool { return hasMessage(err, msgColumnTypeMismatch) }

// IsEmptyCells reports whether err is an empty-input error.
func IsEmptyCells(err error) bool { return hasMessage(err, msgEmptyCells) }

func hasMessage(err error, prefix string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return len(e.Message) >= len(prefix) && e.Message[:len(prefix)] == prefix
}
