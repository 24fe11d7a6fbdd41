// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ltn_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/ctxtest"
	"github.com/gomlx/ltn"
	"github.com/gomlx/ltn/fuzzy"
	"github.com/stretchr/testify/require"
)

// productPredicate grounds a binary predicate as the plain product of its two
// scalar arguments: deterministic, parameter-free, handy for checking the
// broadcasting bookkeeping.
var productPredicate = ltn.NewPredicate("prod", func(ctx *context.Context, inputs ...*Node) *Node {
	return Mul(inputs[0], inputs[1])
}).WithoutActivation()

func TestPredicateBroadcasting(t *testing.T) {
	ctxtest.RunTestGraphFn(t, "cross-product truth table",
		func(ctx *context.Context, g *Graph) (inputs, outputs []*Node) {
			x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
			y := ltn.NewVariable("y", Const(g, []float64{0.1, 0.3, 0.5}))
			table := productPredicate.Call(ctx, x, y)
			require.Equal(t, []string{"x", "y"}, table.FreeVars())
			outputs = []*Node{table.Node()}
			return
		}, []any{
			[][]float64{{0.02, 0.06, 0.10}, {0.04, 0.12, 0.20}},
		}, 1e-9)
}

// The free-variable order of a combined formula is first-seen: conjoining
// prod(x,y) with prod(y,x) must transpose the second operand, so the result
// is the elementwise square of the first table.
func TestConnectiveAlignment(t *testing.T) {
	ctxtest.RunTestGraphFn(t, "And aligns transposed operands",
		func(ctx *context.Context, g *Graph) (inputs, outputs []*Node) {
			logic := ltn.NewLogic()
			x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
			y := ltn.NewVariable("y", Const(g, []float64{0.1, 0.3, 0.5}))
			xy := productPredicate.Call(ctx, x, y)
			yx := productPredicate.Call(ctx, y, x)
			require.Equal(t, []string{"y", "x"}, yx.FreeVars())
			conj := logic.And(xy, yx)
			require.Equal(t, []string{"x", "y"}, conj.FreeVars())

			neg := logic.Not(xy)
			outputs = []*Node{conj.Node(), neg.Node()}
			return
		}, []any{
			[][]float64{{0.0004, 0.0036, 0.01}, {0.0016, 0.0144, 0.04}},
			[][]float64{{0.98, 0.94, 0.90}, {0.96, 0.88, 0.80}},
		}, 1e-9)
}

// A variable and a constant broadcast so the constant applies to every
// element of the variable's domain.
func TestConstantBroadcasting(t *testing.T) {
	ctxtest.RunTestGraphFn(t, "variable against constant",
		func(ctx *context.Context, g *Graph) (inputs, outputs []*Node) {
			x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
			c := ltn.NewConstant(Const(g, 0.5))
			truths := productPredicate.Call(ctx, x, c)
			require.Equal(t, []string{"x"}, truths.FreeVars())

			closed := productPredicate.Call(ctx, c, c)
			require.True(t, closed.IsClosed())
			outputs = []*Node{truths.Node(), closed.Node()}
			return
		}, []any{
			[]float64{0.1, 0.2},
			0.25,
		}, 1e-9)
}

func TestQuantifiersOnValues(t *testing.T) {
	ctxtest.RunTestGraphFn(t, "ForAll and Exists collapse named axes",
		func(ctx *context.Context, g *Graph) (inputs, outputs []*Node) {
			logic := ltn.NewLogic()
			p := fuzzy.Sharpness(g, dtypes.Float64, 2)
			x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
			y := ltn.NewVariable("y", Const(g, []float64{0.1, 0.3, 0.5}))
			table := productPredicate.Call(ctx, x, y)

			forAllY := logic.ForAll(p, table, "y")
			require.Equal(t, []string{"x"}, forAllY.FreeVars())

			existsAll := logic.Exists(p, table)
			require.True(t, existsAll.IsClosed())

			// ForAll over both axes at once equals quantifying the flattened
			// domain, not a nested reduction.
			forAllBoth := logic.ForAll(p, table, "x", "y")
			require.True(t, forAllBoth.IsClosed())
			outputs = []*Node{forAllY.Node(), existsAll.Node(), forAllBoth.Node()}
			return
		}, []any{
			// 1 - sqrt(mean((1-row)^2)) per row of the table.
			[]float64{0.0594327, 0.1175791},
			// sqrt(mean(table^2)) over all 6 entries.
			0.1080123,
			// 1 - sqrt(mean((1-entry)^2)) over all 6 entries.
			0.0880424,
		}, 1e-6)
}

func TestQuantifierErrors(t *testing.T) {
	ctx := context.New()
	backend := testBackend()
	g := NewGraph(backend, "quantifier-errors")
	defer g.Finalize()

	logic := ltn.NewLogic()
	p := fuzzy.Sharpness(g, dtypes.Float64, 2)
	x := ltn.NewVariable("x", Const(g, []float64{0.2, 0.4}))
	truths := productPredicate.Call(ctx, x, ltn.NewConstant(Const(g, 0.5)))

	err := exceptions.TryCatch[error](func() { logic.ForAll(p, truths, "z") })
	require.ErrorIs(t, err, ltn.ErrDimensionMismatch)

	err = exceptions.TryCatch[error](func() { logic.Exists(p, truths, "x", "x") })
	require.Error(t, err)
}

func TestShapeMismatch(t *testing.T) {
	ctx := context.New()
	backend := testBackend()
	g := NewGraph(backend, "shape-mismatch")
	defer g.Finalize()

	logic := ltn.NewLogic()
	c := ltn.NewConstant(Const(g, 0.5))
	a := productPredicate.Call(ctx, ltn.NewVariable("x", Const(g, []float64{0.2, 0.4})), c)
	b := productPredicate.Call(ctx, ltn.NewVariable("x", Const(g, []float64{0.1, 0.3, 0.5})), c)

	err := exceptions.TryCatch[error](func() { logic.And(a, b) })
	require.ErrorIs(t, err, ltn.ErrShapeMismatch)
}

// The default predicate activation is a sigmoid, so a zero-logit function
// grounds to truth 0.5 and stays in the unit interval.
func TestPredicateDefaultActivation(t *testing.T) {
	ctxtest.RunTestGraphFn(t, "sigmoid on logits",
		func(ctx *context.Context, g *Graph) (inputs, outputs []*Node) {
			zeroLogit := ltn.NewPredicate("zero", func(ctx *context.Context, inputs ...*Node) *Node {
				return ZerosLike(inputs[0])
			})
			x := ltn.NewVariable("x", Const(g, []float64{1, 2, 3}))
			outputs = []*Node{zeroLogit.Call(ctx, x).Node()}
			return
		}, []any{
			[]float64{0.5, 0.5, 0.5},
		}, 1e-9)
}
