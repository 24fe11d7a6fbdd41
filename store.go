// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn

import (
	"iter"
	"slices"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/pkg/errors"
)

// GroundingsScope is the context.Context scope under which a Store keeps its
// groundings.
const GroundingsScope = "groundings"

// Store maps symbolic names to their groundings: concrete tensors held as
// context variables, trainable or not. It is a thin layer over a scoped
// context.Context, so groundings are initialized, checkpointed and updated by
// optimizers exactly like any other GoMLX variable.
//
// Groundings are defined once at setup and updated in place by the optimizer
// across training steps; graph-side accessors (ConstantValue, VariableOver)
// re-read them on every graph execution, so a formula always observes the
// latest values and gradients flow back into trainable groundings.
type Store struct {
	ctx *context.Context
}

// NewStore creates a grounding store on the GroundingsScope scope of ctx.
func NewStore(ctx *context.Context) *Store {
	return &Store{ctx: ctx.In(GroundingsScope)}
}

// Context returns the scoped context holding the groundings.
func (s *Store) Context() *context.Context { return s.ctx }

// Define registers the grounding for name with the given initial value -- any
// value accepted by context.Context.VariableWithValue (Go scalars, slices, or
// tensors). Trainable groundings participate in gradient-based updates;
// non-trainable ones are read-only constants during training.
//
// It panics if name is already defined: groundings have a single definition
// site.
func (s *Store) Define(name string, value any, trainable bool) *context.Variable {
	if s.ctx.InspectVariableInScope(name) != nil {
		Panicf("ltn.Store: grounding %q is already defined", name)
	}
	return s.ctx.VariableWithValue(name, value).SetTrainable(trainable)
}

// DefineWithShape registers the grounding for name with the given shape,
// initialized by the context's variable initializer (random by default, see
// context.Context.WithInitializer).
func (s *Store) DefineWithShape(name string, shape shapes.Shape, trainable bool) *context.Variable {
	if s.ctx.InspectVariableInScope(name) != nil {
		Panicf("ltn.Store: grounding %q is already defined", name)
	}
	return s.ctx.VariableWithShape(name, shape).SetTrainable(trainable)
}

// Get returns the grounding registered for name, or an error wrapping
// ErrUndefinedName if it was never defined.
func (s *Store) Get(name string) (*context.Variable, error) {
	v := s.ctx.InspectVariableInScope(name)
	if v == nil {
		return nil, errors.Wrapf(ErrUndefinedName, "%q (defined groundings: %v)", name, s.Names())
	}
	return v, nil
}

// mustGet is the graph-building version of Get: it panics on undefined names.
func (s *Store) mustGet(name string) *context.Variable {
	v, err := s.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Names returns the sorted names of all defined groundings.
func (s *Store) Names() []string {
	var names []string
	for v := range s.ctx.IterVariablesInScope() {
		names = append(names, v.Name())
	}
	slices.Sort(names)
	return names
}

// TrainableVariables iterates over the trainable groundings, e.g. to hand
// them to an external optimizer.
func (s *Store) TrainableVariables() iter.Seq[*context.Variable] {
	return func(yield func(*context.Variable) bool) {
		for v := range s.ctx.IterVariablesInScope() {
			if !v.Trainable {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// ConstantValue returns the grounding of name as a closed Value (no free
// variables) in graph g. It panics with ErrUndefinedName if name was never
// defined.
func (s *Store) ConstantValue(g *graph.Graph, name string) *Value {
	return NewConstant(s.mustGet(name).ValueGraph(g))
}

// VariableOver builds the logical variable varName in graph g by stacking the
// groundings of the named constants along a new leading (domain) axis. All
// groundings must share the same shape, otherwise it panics with
// ErrShapeMismatch.
//
// The stack is rebuilt inside every graph execution, so after an in-place
// optimizer update the variable observes the new grounding values, and
// gradients of a quantified formula flow back to each individual grounding.
func (s *Store) VariableOver(g *graph.Graph, varName string, names ...string) *Value {
	if len(names) == 0 {
		Panicf("ltn.Store.VariableOver(%q): at least one grounding name required", varName)
	}
	nodes := make([]*graph.Node, len(names))
	for i, name := range names {
		nodes[i] = s.mustGet(name).ValueGraph(g)
		if i > 0 && !nodes[i].Shape().Equal(nodes[0].Shape()) {
			panic(errors.Wrapf(ErrShapeMismatch,
				"variable %q: grounding %q has shape %s, but %q has shape %s",
				varName, names[i], nodes[i].Shape(), names[0], nodes[0].Shape()))
		}
	}
	return NewVariable(varName, graph.Stack(nodes, 0))
}
