// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn

import (
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Error kinds surfaced by the package. They are always wrapped with context
// about the failing formula, so match them with errors.Is.
//
// Following the GoMLX convention, graph-building functions panic with these
// errors (recoverable with exceptions.Try), while host-side functions return
// them. A malformed formula is a programming error, not a transient fault:
// there is no retry or recovery policy.
var (
	// ErrUndefinedName is returned when a grounding is looked up in a Store
	// before being defined.
	ErrUndefinedName = errors.New("undefined grounding name")

	// ErrShapeMismatch reports free variables or groundings whose domain
	// sizes or shapes are incompatible for broadcasting.
	ErrShapeMismatch = errors.New("incompatible shapes for free-variable broadcasting")

	// ErrDimensionMismatch reports quantification over a variable that is not
	// free in the operand.
	ErrDimensionMismatch = errors.New("quantified variable is not free in the operand")

	// ErrRangeViolation reports a truth value outside the unit interval [0,1].
	ErrRangeViolation = errors.New("truth value outside the unit interval [0,1]")
)

// CheckUnitInterval verifies that every element of t lies in [0,1], returning
// an error wrapping ErrRangeViolation otherwise. Use it to validate literal
// truth values (e.g. observed facts) before handing them to the fuzzy
// operators, which assume unit-interval inputs and make no checks of their
// own.
//
// Only float32 and float64 tensors are supported.
func CheckUnitInterval(t *tensors.Tensor) error {
	var bad float64
	var badIdx = -1
	var err error
	switch t.DType() {
	case dtypes.Float64:
		err = tensors.ConstFlatData[float64](t, func(flat []float64) {
			for i, v := range flat {
				if v < 0 || v > 1 {
					bad, badIdx = v, i
					return
				}
			}
		})
	case dtypes.Float32:
		err = tensors.ConstFlatData[float32](t, func(flat []float32) {
			for i, v := range flat {
				if v < 0 || v > 1 {
					bad, badIdx = float64(v), i
					return
				}
			}
		})
	default:
		return errors.Errorf("CheckUnitInterval: unsupported dtype %s", t.DType())
	}
	if err != nil {
		return errors.WithMessage(err, "CheckUnitInterval failed to access tensor data")
	}
	if badIdx >= 0 {
		return errors.Wrapf(ErrRangeViolation, "element #%d is %g", badIdx, bad)
	}
	return nil
}
