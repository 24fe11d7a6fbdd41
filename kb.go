// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn

import (
	"slices"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/ltn/fuzzy"
	"golang.org/x/exp/maps"
)

// AxiomFn builds the grounding of one closed axiom: a formula with no free
// variables left after quantification, evaluating to a scalar truth value.
// The sharpness node p is the quantifier exponent for the current training
// step, so a sharpness schedule reaches every quantifier in the knowledge
// base without rebuilding graphs.
type AxiomFn func(ctx *context.Context, g *graph.Graph, p *graph.Node) *Value

// KnowledgeBase is a named collection of fuzzy axioms over a grounding store.
// Its satisfaction level -- the aggregated truth of all axioms -- is the
// scalar a training loop maximizes: Loss returns 1 - Satisfaction.
type KnowledgeBase struct {
	logic  *Logic
	store  *Store
	axioms map[string]AxiomFn
	aggP   float64
}

// DefaultAggregatorSharpness is the default exponent of the satisfaction
// aggregator's generalized mean.
const DefaultAggregatorSharpness = 2.0

// NewKnowledgeBase creates an empty knowledge base over the given logic and
// grounding store.
func NewKnowledgeBase(logic *Logic, store *Store) *KnowledgeBase {
	return &KnowledgeBase{
		logic:  logic,
		store:  store,
		axioms: make(map[string]AxiomFn),
		aggP:   DefaultAggregatorSharpness,
	}
}

// WithAggregatorSharpness sets the exponent of the generalized mean that
// aggregates axiom truths into the satisfaction level. Larger values bias the
// aggregate further toward the worst-satisfied axiom. Must be at least 1 (see
// fuzzy.Sharpness). Returns kb for chaining.
func (kb *KnowledgeBase) WithAggregatorSharpness(p float64) *KnowledgeBase {
	if p < 1 {
		Panicf("ltn.KnowledgeBase: aggregator sharpness must be >= 1, got %g", p)
	}
	kb.aggP = p
	return kb
}

// Logic returns the fuzzy semantics the knowledge base was built with.
func (kb *KnowledgeBase) Logic() *Logic { return kb.logic }

// Store returns the grounding store.
func (kb *KnowledgeBase) Store() *Store { return kb.store }

// AddAxiom registers a named closed axiom. It panics if the name is already
// taken.
func (kb *KnowledgeBase) AddAxiom(name string, fn AxiomFn) {
	if _, found := kb.axioms[name]; found {
		Panicf("ltn.KnowledgeBase: axiom %q is already defined", name)
	}
	kb.axioms[name] = fn
}

// AxiomNames returns the sorted names of all registered axioms.
func (kb *KnowledgeBase) AxiomNames() []string {
	names := maps.Keys(kb.axioms)
	slices.Sort(names)
	return names
}

// AxiomTruths grounds every axiom in graph g and returns their scalar truth
// nodes, in AxiomNames order. It panics if an axiom evaluates to a non-closed
// value: quantification must have collapsed every free variable.
func (kb *KnowledgeBase) AxiomTruths(ctx *context.Context, g *graph.Graph, p *graph.Node) []*graph.Node {
	names := kb.AxiomNames()
	if len(names) == 0 {
		Panicf("ltn.KnowledgeBase has no axioms")
	}
	truths := make([]*graph.Node, len(names))
	for i, name := range names {
		v := kb.axioms[name](ctx, g, p)
		if !v.IsClosed() {
			Panicf("ltn.KnowledgeBase: axiom %q is not closed, free variables %v remain",
				name, v.freeVars)
		}
		truths[i] = v.Node()
	}
	return truths
}

// Satisfaction grounds all axioms and aggregates their truths into the scalar
// satisfaction level in [0,1], using the aggregator's generalized mean biased
// toward the worst-satisfied axiom. p is the quantifier sharpness passed to
// every axiom.
func (kb *KnowledgeBase) Satisfaction(ctx *context.Context, g *graph.Graph, p *graph.Node) *graph.Node {
	truths := kb.AxiomTruths(ctx, g, p)
	aggP := fuzzy.Sharpness(g, truths[0].DType(), kb.aggP)
	return fuzzy.SatAgg(aggP, truths...)
}

// Loss is the training objective 1 - Satisfaction, a scalar in [0,1] to be
// minimized.
func (kb *KnowledgeBase) Loss(ctx *context.Context, g *graph.Graph, p *graph.Node) *graph.Node {
	return graph.OneMinus(kb.Satisfaction(ctx, g, p))
}

// TrainStep returns a context graph function performing one training step:
// it grounds the knowledge base, applies one optimizer update on the loss and
// returns the (pre-update) satisfaction level. The returned function takes
// the quantifier sharpness as its only tensor input, so it can be compiled
// once with context.NewExec and driven with a sharpness schedule:
//
//	step := context.MustNewExec(backend, ctx, kb.TrainStep(optimizers.Adam().Done()))
//	for i := range numSteps {
//		sat := step.MustExec(scheduleP(i))[0]
//		...
//	}
func (kb *KnowledgeBase) TrainStep(optimizer optimizers.Interface) func(ctx *context.Context, p *graph.Node) *graph.Node {
	return func(ctx *context.Context, p *graph.Node) *graph.Node {
		g := p.Graph()
		sat := kb.Satisfaction(ctx, g, p)
		optimizer.UpdateGraph(ctx, g, graph.OneMinus(sat))
		return sat
	}
}
