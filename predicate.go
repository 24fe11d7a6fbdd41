// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn

import (
	"slices"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers/fnn"
)

// PredicateGraphFn computes the truth logits of a predicate for a flattened
// batch of groundings: each input has shape [batchSize, features...] and the
// output must have shape [batchSize] or [batchSize, 1]. Trainable parameters
// are created on the given context, like any GoMLX model function.
type PredicateGraphFn func(ctx *context.Context, inputs ...*graph.Node) *graph.Node

// Predicate is a trainable function from groundings to fuzzy truth values in
// [0,1]. Calling it broadcasts its input Values against each other, so the
// output carries one truth value per combination of free-variable elements
// (see Value).
//
// By default the wrapped function's output is passed through a Sigmoid, which
// guarantees the unit-interval range the fuzzy operators require. Functions
// that already produce values in [0,1] can opt out with WithoutActivation --
// the range contract then becomes the caller's responsibility, and violating
// it is undefined behavior for every operator downstream.
type Predicate struct {
	name         string
	fn           PredicateGraphFn
	noActivation bool
}

// NewPredicate creates a named predicate from a graph function. The name
// scopes the predicate's trainable parameters in the context, so two
// predicates with different names never share weights.
func NewPredicate(name string, fn PredicateGraphFn) *Predicate {
	if name == "" {
		Panicf("ltn.NewPredicate: predicate name cannot be empty")
	}
	return &Predicate{name: name, fn: fn}
}

// NewMLPPredicate creates a predicate grounded by a feed-forward network: the
// features of all input groundings are concatenated and fed to an MLP with
// the given hidden configuration and a single sigmoid output.
func NewMLPPredicate(name string, numHiddenLayers, numHiddenNodes int) *Predicate {
	return NewPredicate(name, func(ctx *context.Context, inputs ...*graph.Node) *graph.Node {
		for i, x := range inputs {
			if x.Rank() == 1 {
				inputs[i] = graph.ExpandAxes(x, -1)
			}
		}
		x := inputs[0]
		if len(inputs) > 1 {
			x = graph.Concatenate(inputs, -1)
		}
		return fnn.New(ctx, x, 1).NumHiddenLayers(numHiddenLayers, numHiddenNodes).Done()
	})
}

// Name returns the predicate's name.
func (p *Predicate) Name() string { return p.name }

// WithoutActivation disables the default Sigmoid on the wrapped function's
// output. Returns p for chaining.
func (p *Predicate) WithoutActivation() *Predicate {
	p.noActivation = true
	return p
}

// Call evaluates the predicate on the given terms (constants and variables).
//
// The terms are broadcast against each other to the cross product of the
// union of their free variables -- first-seen order -- flattened to a batch,
// fed to the predicate function, and the truth values folded back so the
// output has one axis per free variable: Call(x, y) with |x|=m, |y|=n yields
// an m×n truth table. With only constants as inputs the output is a closed
// scalar truth value.
func (p *Predicate) Call(ctx *context.Context, terms ...*Value) *Value {
	if len(terms) == 0 {
		Panicf("ltn.Predicate(%q).Call: at least one term required", p.name)
	}
	flat, union := alignTerms(terms...)
	batchSize := flat[0].Shape().Dimensions[0]

	out := p.fn(ctx.In(p.name), flat...)
	if out.Rank() == 2 && out.Shape().Dimensions[1] == 1 {
		out = graph.Squeeze(out, -1)
	}
	if out.Rank() != 1 || out.Shape().Dimensions[0] != batchSize {
		Panicf("ltn.Predicate(%q): graph function must return shape [%d] or [%d, 1], got %s",
			p.name, batchSize, batchSize, out.Shape())
	}
	if !p.noActivation {
		out = graph.Sigmoid(out)
	}
	out = graph.Reshape(out, union.dims...)
	return &Value{node: out, freeVars: slices.Clone(union.names)}
}
