// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/default"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/ctxtest"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/ltn"
	"github.com/gomlx/ltn/fuzzy"
	"github.com/stretchr/testify/require"
)

func testBackend() backends.Backend { return graphtest.BuildTestBackend() }

func TestKnowledgeBaseSatisfaction(t *testing.T) {
	ctxtest.RunTestGraphFn(t, "aggregated satisfaction and loss",
		func(ctx *context.Context, g *Graph) (inputs, outputs []*Node) {
			logic := ltn.NewLogic()
			store := ltn.NewStore(ctx)
			kb := ltn.NewKnowledgeBase(logic, store)
			kb.AddAxiom("mostly-liked", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
				x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
				c := ltn.NewConstant(Const(g, 0.9))
				return logic.ForAll(p, productPredicate.Call(ctx, x, c))
			})
			kb.AddAxiom("background", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
				return ltn.NewConstant(Const(g, 0.8))
			})
			require.Equal(t, []string{"background", "mostly-liked"}, kb.AxiomNames())

			p := fuzzy.Sharpness(g, dtypes.Float64, 2)
			outputs = []*Node{
				kb.Satisfaction(ctx, g, p),
				kb.Loss(ctx, g, p),
			}
			return
		}, []any{
			// Axiom truths: ForAll_x prod(x, 0.9) = 1-sqrt(mean([0.82 0.64]^2))
			// = 0.264473, and the literal 0.8; aggregated with the p=2
			// error-mean: 1 - sqrt(mean([0.735527 0.2]^2)).
			0.4610195,
			0.5389805,
		}, 1e-6)
}

func TestKnowledgeBaseMisuse(t *testing.T) {
	ctx := context.New()
	g := NewGraph(testBackend(), "kb-misuse")
	defer g.Finalize()

	logic := ltn.NewLogic()
	kb := ltn.NewKnowledgeBase(logic, ltn.NewStore(ctx))
	p := fuzzy.Sharpness(g, dtypes.Float64, 2)

	// No axioms.
	err := exceptions.TryCatch[error](func() { kb.Satisfaction(ctx, g, p) })
	require.Error(t, err)

	// An axiom that leaves a variable free is not closed.
	kb.AddAxiom("open", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
		x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
		return productPredicate.Call(ctx, x, ltn.NewConstant(Const(g, 0.9)))
	})
	err = exceptions.TryCatch[error](func() { kb.Satisfaction(ctx, g, p) })
	require.Error(t, err)

	// Duplicate axiom names.
	err = exceptions.TryCatch[error](func() {
		kb.AddAxiom("open", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value { return nil })
	})
	require.Error(t, err)

	require.Panics(t, func() { kb.WithAggregatorSharpness(0) })
	require.Panics(t, func() { kb.WithAggregatorSharpness(0.5) })
}

// Trains a tiny knowledge base end to end: positive and negative facts about
// two individuals plus an existential rule. Satisfaction must improve and end
// up close to 1.
func TestTrainingImprovesSatisfaction(t *testing.T) {
	backend := testBackend()
	ctx := context.New()
	ctx.SetRNGStateFromSeed(42)

	store := ltn.NewStore(ctx)
	store.Define("a", []float32{1}, false)
	store.Define("b", []float32{-1}, false)

	logic := ltn.NewLogic()
	likes := ltn.NewMLPPredicate("Likes", 1, 4)
	kb := ltn.NewKnowledgeBase(logic, store)
	kb.AddAxiom("likes-a", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
		return likes.Call(ctx, store.ConstantValue(g, "a"))
	})
	kb.AddAxiom("dislikes-b", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
		return logic.Not(likes.Call(ctx, store.ConstantValue(g, "b")))
	})
	kb.AddAxiom("someone-liked", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
		everyone := store.VariableOver(g, "x", "a", "b")
		return logic.Exists(p, likes.Call(ctx, everyone))
	})

	optimizer := optimizers.Adam().LearningRate(0.05).Done()
	step := context.MustNewExec(backend, ctx, kb.TrainStep(optimizer))

	var first, last float32
	const numSteps = 300
	for i := 0; i < numSteps; i++ {
		sat := tensors.ToScalar[float32](step.MustExec(float32(2))[0])
		if i == 0 {
			first = sat
		}
		last = sat
	}
	require.Greater(t, last, first, "satisfaction did not improve")
	require.Greater(t, last, float32(0.8), "knowledge base far from satisfied after training")
}
