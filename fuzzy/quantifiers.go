// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fuzzy

import (
	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	. "github.com/gomlx/gomlx/pkg/core/graph"
)

// epsilon keeps truth values away from the edges of the unit interval before
// fractional powers are taken: the gradient of x^(1/p) diverges at x==0.
// Values already inside [epsilon, 1-epsilon] pass through unchanged, so
// reductions over a single element are exact identities for interior values.
const epsilon = 1e-4

// stabilize clamps truth values to [epsilon, 1-epsilon].
func stabilize(x *Node) *Node {
	return ClipScalar(x, epsilon, 1-epsilon)
}

// Sharpness returns a scalar node with the generalized-mean exponent p, to be
// passed to PMean, PMeanError or SatAgg. It panics unless p >= 1: both
// reductions degenerate to the arithmetic mean at p=1 and the power-mean
// inequality reverses below it, where PMean would no longer dominate
// PMeanError and the existential/universal bias directions would swap.
//
// For a sharpness that changes across training steps (e.g. an
// existential-to-universal schedule) feed p as a graph input instead, so the
// same compiled graph serves every step.
func Sharpness(g *Graph, dtype dtypes.DType, p float64) *Node {
	if p < 1 {
		Panicf("fuzzy.Sharpness: exponent p must be >= 1, got %g", p)
	}
	return Scalar(g, dtype, p)
}

// PMean reduces truth values with the generalized mean
//
//	(mean(x^p))^(1/p)
//
// over the given axes (all axes if none given). For p=1 it is the arithmetic
// mean; as p grows it approaches the maximum, which makes it the differentiable
// stand-in for existential quantification. The sharpness p must be a scalar
// node with p >= 1 (see Sharpness).
//
// Reducing a single element is the identity for interior truth values;
// values at the interval edges are first clamped to [epsilon, 1-epsilon].
func PMean(x, p *Node, axes ...int) *Node {
	x = stabilize(x)
	return Pow(ReduceMean(Pow(x, p), axes...), Inverse(p))
}

// PMeanError reduces truth values with the generalized mean of the complement
//
//	1 - (mean((1-x)^p))^(1/p)
//
// over the given axes (all axes if none given). For p=1 it is the arithmetic
// mean; as p grows it approaches the minimum, which makes it the
// differentiable stand-in for universal quantification: a single badly
// violated element dominates the result. The sharpness p must be a scalar
// node with p >= 1 (see Sharpness).
//
// Reducing a single element is the identity for interior truth values;
// values at the interval edges are first clamped to [epsilon, 1-epsilon].
func PMeanError(x, p *Node, axes ...int) *Node {
	x = stabilize(x)
	return OneMinus(Pow(ReduceMean(Pow(OneMinus(x), p), axes...), Inverse(p)))
}

// SatAgg aggregates the truth values of closed axioms into a single scalar
// satisfaction level in [0, 1], the direct optimization target of a knowledge
// base (loss = 1 - SatAgg).
//
// The aggregation is PMeanError over the stacked axiom truths, biased toward
// the minimum so one badly violated axiom dominates the aggregate. Each axiom
// truth must be a scalar node; aggregating a single axiom returns its value
// unchanged, including at the interval edges. It panics if no axioms are
// given.
func SatAgg(p *Node, axioms ...*Node) *Node {
	if len(axioms) == 0 {
		Panicf("fuzzy.SatAgg requires at least one axiom truth value")
	}
	for i, a := range axioms {
		if !a.Shape().IsScalar() {
			Panicf("fuzzy.SatAgg: axiom #%d is not closed, it still has shape %s", i, a.Shape())
		}
	}
	if len(axioms) == 1 {
		// No fractional power on this path, so no clamping is needed and the
		// identity is exact even for truths of exactly 0 or 1.
		return axioms[0]
	}
	return PMeanError(Stack(axioms, 0), p)
}
