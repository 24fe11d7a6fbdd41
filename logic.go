// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn

import (
	"slices"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/ltn/fuzzy"
	"github.com/pkg/errors"
)

// Logic bundles one choice of fuzzy semantics for each connective. Formulas
// built through its methods are ordinary graph computations, so they are
// differentiable end to end.
//
// The zero value uses the standard negation, the product t-norm, the
// probabilistic-sum t-conorm and the Reichenbach implication; use the
// With* options to select other members of the operator families.
type Logic struct {
	negation    fuzzy.Negation
	tnorm       fuzzy.TNorm
	tconorm     fuzzy.TConorm
	implication fuzzy.Implication
}

// LogicOption configures a Logic, see NewLogic.
type LogicOption func(*Logic)

// WithNegation selects the negation semantics.
func WithNegation(n fuzzy.Negation) LogicOption {
	return func(l *Logic) { l.negation = n }
}

// WithTNorm selects the conjunction semantics.
func WithTNorm(t fuzzy.TNorm) LogicOption {
	return func(l *Logic) { l.tnorm = t }
}

// WithTConorm selects the disjunction semantics.
func WithTConorm(t fuzzy.TConorm) LogicOption {
	return func(l *Logic) { l.tconorm = t }
}

// WithImplication selects the implication semantics.
func WithImplication(i fuzzy.Implication) LogicOption {
	return func(l *Logic) { l.implication = i }
}

// NewLogic creates a Logic with the given options. With no options it is the
// product configuration: standard negation, product t-norm, probabilistic sum
// and Reichenbach implication.
func NewLogic(options ...LogicOption) *Logic {
	l := &Logic{
		negation:    fuzzy.NegStandard,
		tnorm:       fuzzy.AndProd,
		tconorm:     fuzzy.OrProbSum,
		implication: fuzzy.ImpliesReichenbach,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Not negates the truth values of a. The free variables are unchanged.
func (l *Logic) Not(a *Value) *Value {
	a.assertTruth()
	return &Value{node: l.negation.Apply(a.node), freeVars: slices.Clone(a.freeVars)}
}

// And is the fuzzy conjunction of the operands, broadcast over the
// first-seen-ordered union of their free variables. At least two operands are
// required; with more, the (associative) t-norm is folded left to right.
func (l *Logic) And(operands ...*Value) *Value {
	return l.fold("And", l.tnorm.Apply, operands)
}

// Or is the fuzzy disjunction of the operands, broadcast over the
// first-seen-ordered union of their free variables. At least two operands are
// required; with more, the (associative) t-conorm is folded left to right.
func (l *Logic) Or(operands ...*Value) *Value {
	return l.fold("Or", l.tconorm.Apply, operands)
}

// Implies is the fuzzy implication a -> b, broadcast over the
// first-seen-ordered union of the operands' free variables.
func (l *Logic) Implies(a, b *Value) *Value {
	nodes, union := alignTruths(a, b)
	return &Value{
		node:     l.implication.Apply(nodes[0], nodes[1]),
		freeVars: slices.Clone(union.names),
	}
}

func (l *Logic) fold(opName string, apply func(a, b *graph.Node) *graph.Node, operands []*Value) *Value {
	if len(operands) < 2 {
		Panicf("ltn.Logic.%s: at least two operands required, got %d", opName, len(operands))
	}
	nodes, union := alignTruths(operands...)
	node := nodes[0]
	for _, rhs := range nodes[1:] {
		node = apply(node, rhs)
	}
	return &Value{node: node, freeVars: slices.Clone(union.names)}
}

// ForAll universally quantifies the named free variables of a (all of them if
// none are named), collapsing the corresponding axes with the
// fuzzy.PMeanError generalized mean: the larger the sharpness p, the closer
// to a hard minimum over the domain. Low p early in training avoids vanishing
// gradients; raising it later tightens the semantics toward the strict
// universal ("existential-like to universal-like" schedule).
//
// It panics with ErrDimensionMismatch if a named variable is not free in a.
func (l *Logic) ForAll(p *graph.Node, a *Value, vars ...string) *Value {
	return quantify("ForAll", fuzzy.PMeanError, p, a, vars)
}

// Exists existentially quantifies the named free variables of a (all of them
// if none are named), collapsing the corresponding axes with the fuzzy.PMean
// generalized mean, biased toward the domain maximum as the sharpness p
// grows.
//
// It panics with ErrDimensionMismatch if a named variable is not free in a.
func (l *Logic) Exists(p *graph.Node, a *Value, vars ...string) *Value {
	return quantify("Exists", fuzzy.PMean, p, a, vars)
}

func quantify(opName string, reduce func(x, p *graph.Node, axes ...int) *graph.Node,
	p *graph.Node, a *Value, vars []string) *Value {
	a.assertTruth()
	if len(vars) == 0 {
		vars = a.freeVars
	}
	axes := make([]int, 0, len(vars))
	for _, name := range vars {
		axis := slices.Index(a.freeVars, name)
		if axis < 0 {
			panic(errors.Wrapf(ErrDimensionMismatch,
				"%s over %q, but the operand's free variables are %v", opName, name, a.freeVars))
		}
		if slices.Contains(axes, axis) {
			Panicf("ltn.Logic.%s: variable %q quantified twice", opName, name)
		}
		axes = append(axes, axis)
	}
	if len(axes) == 0 {
		// Already closed, nothing to collapse.
		return &Value{node: a.node}
	}
	remaining := make([]string, 0, len(a.freeVars)-len(axes))
	for _, name := range a.freeVars {
		if !slices.Contains(vars, name) {
			remaining = append(remaining, name)
		}
	}
	return &Value{node: reduce(a.node, p, axes...), freeVars: remaining}
}
