// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fuzzy implements differentiable fuzzy-logic operators over GoMLX
// graph nodes: negations, t-norms (conjunction), t-conorms (disjunction),
// implications, generalized-mean quantifier reductions and the knowledge-base
// satisfaction aggregator.
//
// All operators assume their inputs are truth values, that is, nodes whose
// elements lie in the closed unit interval [0, 1], and they preserve that
// range. Feeding values outside the unit interval is undefined behavior.
// Binary operators are pointwise and follow the usual broadcasting rules of
// the graph package.
//
// Operator families are closed enums (Negation, TNorm, TConorm, Implication)
// selected at configuration time, so a logic built on top of this package can
// swap semantics without changing formula code.
package fuzzy

import (
	. "github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/pkg/core/graph"
)

// Negation selects the fuzzy negation semantics.
type Negation int

const (
	// NegStandard is the standard fuzzy negation: not(a) = 1-a.
	NegStandard Negation = iota
)

// String implements fmt.Stringer.
func (n Negation) String() string {
	switch n {
	case NegStandard:
		return "NegStandard"
	default:
		return "InvalidNegation"
	}
}

// Apply returns the negation of the truth values in a.
func (n Negation) Apply(a *Node) *Node {
	switch n {
	case NegStandard:
		return OneMinus(a)
	default:
		Panicf("invalid fuzzy.Negation %d", n)
		return nil
	}
}

// TNorm selects the fuzzy conjunction semantics.
type TNorm int

const (
	// AndProd is the product t-norm: and(a,b) = a*b.
	AndProd TNorm = iota

	// AndLukasiewicz is the Lukasiewicz t-norm: and(a,b) = max(0, a+b-1).
	AndLukasiewicz

	// AndMin is the Gödel (minimum) t-norm: and(a,b) = min(a,b).
	AndMin
)

// String implements fmt.Stringer.
func (t TNorm) String() string {
	switch t {
	case AndProd:
		return "AndProd"
	case AndLukasiewicz:
		return "AndLukasiewicz"
	case AndMin:
		return "AndMin"
	default:
		return "InvalidTNorm"
	}
}

// Apply returns the conjunction of the truth values in a and b.
// The operand shapes must be equal or broadcast-compatible.
func (t TNorm) Apply(a, b *Node) *Node {
	switch t {
	case AndProd:
		return Mul(a, b)
	case AndLukasiewicz:
		return MaxScalar(AddScalar(Add(a, b), -1), 0)
	case AndMin:
		return Min(a, b)
	default:
		Panicf("invalid fuzzy.TNorm %d", t)
		return nil
	}
}

// TConorm selects the fuzzy disjunction semantics.
type TConorm int

const (
	// OrProbSum is the probabilistic sum t-conorm: or(a,b) = a+b-a*b.
	OrProbSum TConorm = iota

	// OrLukasiewicz is the Lukasiewicz t-conorm: or(a,b) = min(1, a+b).
	OrLukasiewicz

	// OrMax is the Gödel (maximum) t-conorm: or(a,b) = max(a,b).
	OrMax
)

// String implements fmt.Stringer.
func (t TConorm) String() string {
	switch t {
	case OrProbSum:
		return "OrProbSum"
	case OrLukasiewicz:
		return "OrLukasiewicz"
	case OrMax:
		return "OrMax"
	default:
		return "InvalidTConorm"
	}
}

// Apply returns the disjunction of the truth values in a and b.
// The operand shapes must be equal or broadcast-compatible.
func (t TConorm) Apply(a, b *Node) *Node {
	switch t {
	case OrProbSum:
		sum := Add(a, b)
		return Sub(sum, Mul(a, b))
	case OrLukasiewicz:
		return MinScalar(Add(a, b), 1)
	case OrMax:
		return Max(a, b)
	default:
		Panicf("invalid fuzzy.TConorm %d", t)
		return nil
	}
}

// Implication selects the fuzzy implication semantics.
type Implication int

const (
	// ImpliesReichenbach is the Reichenbach implication: implies(a,b) = 1-a+a*b.
	ImpliesReichenbach Implication = iota

	// ImpliesKleeneDienes is the Kleene-Dienes implication: implies(a,b) = max(1-a, b).
	ImpliesKleeneDienes

	// ImpliesLukasiewicz is the Lukasiewicz implication: implies(a,b) = min(1, 1-a+b).
	ImpliesLukasiewicz

	// ImpliesGoguen is the Goguen implication, the residuum of the product
	// t-norm: implies(a,b) = 1 if a<=b else b/a.
	ImpliesGoguen
)

// String implements fmt.Stringer.
func (i Implication) String() string {
	switch i {
	case ImpliesReichenbach:
		return "ImpliesReichenbach"
	case ImpliesKleeneDienes:
		return "ImpliesKleeneDienes"
	case ImpliesLukasiewicz:
		return "ImpliesLukasiewicz"
	case ImpliesGoguen:
		return "ImpliesGoguen"
	default:
		return "InvalidImplication"
	}
}

// Apply returns the implication a -> b over truth values.
// The operand shapes must be equal or broadcast-compatible.
func (i Implication) Apply(a, b *Node) *Node {
	switch i {
	case ImpliesReichenbach:
		return Add(OneMinus(a), Mul(a, b))
	case ImpliesKleeneDienes:
		return Max(OneMinus(a), b)
	case ImpliesLukasiewicz:
		return MinScalar(Add(OneMinus(a), b), 1)
	case ImpliesGoguen:
		// The antecedent is kept away from zero so the quotient (and its
		// gradient) stays finite; inputs are truth values so the clamp only
		// matters at a==0, where the implication is 1 anyway.
		quotient := Div(b, MaxScalar(a, epsilon))
		return Where(LessOrEqual(a, b), OnesLike(quotient), quotient)
	default:
		Panicf("invalid fuzzy.Implication %d", i)
		return nil
	}
}
