package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeQuery, "planning failed")
	assert.Equal(t, "query: planning failed", err.Error())

	wrapped := Wrap(errors.New("boom"), ErrorTypeConnection, "execute")
	assert.Equal(t, "connection: execute: boom", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "boom")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeQuery, "nothing"))
}

func TestIsType(t *testing.T) {
	err := NewInvalidResolution(42)
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeQuery))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeValidation))

	// predicates survive wrapping with %w
	chained := fmt.Errorf("outer: %w", err)
	assert.True(t, IsType(chained, ErrorTypeValidation))
}

func TestKindPredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{NewInvalidResolution(99), IsInvalidResolution},
		{NewInvalidCell(0), IsInvalidCell},
		{NewMixedResolutions(5, 7), IsMixedResolutions},
		{NewResolutionTooCoarse(8, 4), IsResolutionTooCoarse},
		{NewNoQueryableTable("water", 4), IsNoQueryableTable},
		{NewColumnTypeMismatch("u64", "f32"), IsColumnTypeMismatch},
		{NewEmptyCells(), IsEmptyCells},
	}
	preds := []func(error) bool{
		IsInvalidResolution, IsInvalidCell, IsMixedResolutions,
		IsResolutionTooCoarse, IsNoQueryableTable, IsColumnTypeMismatch,
		IsEmptyCells,
	}
	for i, c := range cases {
		for j, pred := range preds {
			got := pred(c.err)
			if i == j {
				assert.True(t, got, "case %d should match its own predicate", i)
			} else {
				assert.False(t, got, "case %d must not match predicate %d", i, j)
			}
		}
	}
}

func TestDetailsCarryValues(t *testing.T) {
	err := NewColumnTypeMismatch("u64", "date")
	require.NotNil(t, err.Details)
	assert.Equal(t, "u64", err.Detail("expected"))
	assert.Equal(t, "date", err.Detail("actual"))

	res := NewInvalidResolution(16)
	assert.Equal(t, 16, res.Detail("resolution"))
}
