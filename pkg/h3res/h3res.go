// Package h3res validates and canonicalizes H3 resolution values.
package h3res

import (
	"sort"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// MaxResolution is the finest resolution of the H3 grid.
const MaxResolution = 15

// MinResolution is the coarsest resolution of the H3 grid.
const MinResolution = 0

// Validate checks that res lies within [MinResolution, MaxResolution].
func Validate(res int) error {
	if res < MinResolution || res > MaxResolution {
		return errors.NewInvalidResolution(res)
	}
	return nil
}

// Normalize returns the ascending, deduplicated resolution list. Any value
// outside the valid range fails the whole call. The result is stable
// regardless of input order and duplicates, and Normalize is idempotent.
func Normalize(resolutions []int) ([]int, error) {
	cleaned := make([]int, 0, len(resolutions))
	for _, res := range resolutions {
		if err := Validate(res); err != nil {
			return nil, err
		}
		cleaned = append(cleaned, res)
	}
	sort.Ints(cleaned)
	deduped := cleaned[:0]
	for i, res := range cleaned {
		if i == 0 || res != cleaned[i-1] {
			deduped = append(deduped, res)
		}
	}
	return deduped, nil
}
