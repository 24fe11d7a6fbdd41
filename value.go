// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ltn grounds first-order fuzzy logic into GoMLX computation graphs:
// Logic Tensor Networks.
//
// Symbolic constants and domains are grounded as tensors (see Store),
// predicates as trainable graph functions mapping groundings to truth values
// in [0,1] (see Predicate), and formulas as graph nodes carrying an ordered
// set of free-variable names, one per leading axis (see Value). Connectives
// and quantifiers (see Logic and the fuzzy subpackage) combine truth values
// with differentiable t-norm semantics, and a KnowledgeBase aggregates axiom
// truths into a single scalar satisfaction level whose complement is the
// training loss.
//
// Everything is built from regular GoMLX graph nodes, so gradients flow from
// the satisfaction level back to every trainable grounding and predicate
// parameter, and any GoMLX optimizer can train a knowledge base.
package ltn

import (
	"slices"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/pkg/errors"
)

// Value is a grounded term or formula: a graph node plus the ordered list of
// free variables it depends on. Each free variable corresponds to one leading
// axis of the node, in order; any remaining trailing axes are feature axes of
// the grounding (present on terms, absent on truth values).
//
// The free-variable order of a combined Value is always the first-seen order
// across its operands, which keeps axis layouts consistent across an entire
// formula evaluation.
type Value struct {
	node     *graph.Node
	freeVars []string
}

// NewConstant wraps a node with no free variables: an individual grounding
// (rank >= 1, feature axes only) or an already-closed truth value (scalar).
func NewConstant(node *graph.Node) *Value {
	return &Value{node: node}
}

// NewVariable wraps a node as a logical variable named name: the leading axis
// enumerates the elements of the variable's domain, trailing axes (if any)
// are the features of each element.
func NewVariable(name string, node *graph.Node) *Value {
	if name == "" {
		Panicf("ltn.NewVariable: variable name cannot be empty")
	}
	if node.Rank() < 1 {
		Panicf("ltn.NewVariable(%q): node must have at least the domain axis, got scalar %s",
			name, node.Shape())
	}
	return &Value{node: node, freeVars: []string{name}}
}

// Node returns the underlying graph node.
func (v *Value) Node() *graph.Node { return v.node }

// FreeVars returns a copy of the ordered free-variable names of v.
func (v *Value) FreeVars() []string { return slices.Clone(v.freeVars) }

// IsClosed reports whether v has no free variables left.
func (v *Value) IsClosed() bool { return len(v.freeVars) == 0 }

// featureRank returns the number of trailing feature axes.
func (v *Value) featureRank() int { return v.node.Rank() - len(v.freeVars) }

// assertTruth panics unless v is a pure truth value: one axis per free
// variable and no feature axes.
func (v *Value) assertTruth() {
	if v.featureRank() != 0 {
		Panicf("expected a truth value with one axis per free variable %v, got shape %s",
			v.freeVars, v.node.Shape())
	}
}

// varUnion accumulates the first-seen-ordered union of free variables across
// operands, with the domain size of each.
type varUnion struct {
	names []string
	dims  []int
}

// add merges the free variables of a Value into the union, checking that a
// variable seen in more than one operand has the same domain size everywhere.
func (u *varUnion) add(v *Value) {
	dims := v.node.Shape().Dimensions
	for i, name := range v.freeVars {
		dim := dims[i]
		at := slices.Index(u.names, name)
		if at < 0 {
			u.names = append(u.names, name)
			u.dims = append(u.dims, dim)
			continue
		}
		if u.dims[at] != dim {
			panic(errors.Wrapf(ErrShapeMismatch,
				"variable %q has domain size %d in one operand and %d in another",
				name, u.dims[at], dim))
		}
	}
}

// alignTo reshapes v's node so its leading axes match the union's variable
// order and dimensions: axes are transposed to the union's relative order,
// size-1 axes are inserted for the union variables v does not depend on, and
// the result is broadcast to the full cross-product dimensions. Trailing
// feature axes are preserved untouched.
func (u *varUnion) alignTo(v *Value) *graph.Node {
	node := v.node
	numVars := len(v.freeVars)
	featureRank := v.featureRank()

	// Transpose v's variable axes to the union's relative order.
	target := make([]string, 0, numVars)
	for _, name := range u.names {
		if slices.Contains(v.freeVars, name) {
			target = append(target, name)
		}
	}
	if !slices.Equal(target, v.freeVars) {
		perm := make([]int, 0, node.Rank())
		for _, name := range target {
			perm = append(perm, slices.Index(v.freeVars, name))
		}
		for axis := numVars; axis < node.Rank(); axis++ {
			perm = append(perm, axis)
		}
		node = graph.TransposeAllAxes(node, perm...)
	}

	// Insert size-1 axes for the union variables v does not depend on.
	var newAxes []int
	for i, name := range u.names {
		if !slices.Contains(v.freeVars, name) {
			newAxes = append(newAxes, i)
		}
	}
	if len(newAxes) > 0 {
		node = graph.ExpandAxes(node, newAxes...)
	}

	// Broadcast to the full cross product of the union domains.
	dims := make([]int, 0, len(u.dims)+featureRank)
	dims = append(dims, u.dims...)
	dims = append(dims, node.Shape().Dimensions[len(u.names):]...)
	return graph.BroadcastToDims(node, dims...)
}

// alignTruths broadcasts truth-value operands against each other so they all
// share the same shape, one axis per variable of the first-seen-ordered union
// of their free variables. It is the engine behind the binary connectives.
func alignTruths(operands ...*Value) (nodes []*graph.Node, union *varUnion) {
	union = &varUnion{}
	for _, v := range operands {
		v.assertTruth()
		union.add(v)
	}
	nodes = make([]*graph.Node, len(operands))
	for i, v := range operands {
		nodes[i] = union.alignTo(v)
	}
	return
}

// alignTerms broadcasts term operands (groundings with feature axes) to the
// cross product of the union of their free variables, and flattens each to a
// batch of shape [crossProductSize, features...], ready to be fed to a
// predicate's graph function. It returns the flattened nodes and the union,
// whose dimensions give the shape the predicate output must be folded back
// to.
func alignTerms(operands ...*Value) (flat []*graph.Node, union *varUnion) {
	union = &varUnion{}
	for _, v := range operands {
		union.add(v)
	}
	crossSize := 1
	for _, dim := range union.dims {
		crossSize *= dim
	}
	flat = make([]*graph.Node, len(operands))
	for i, v := range operands {
		node := union.alignTo(v)
		featureDims := node.Shape().Dimensions[len(union.names):]
		dims := make([]int, 0, 1+len(featureDims))
		dims = append(dims, crossSize)
		dims = append(dims, featureDims...)
		flat[i] = graph.Reshape(node, dims...)
	}
	return
}
