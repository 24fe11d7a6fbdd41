// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// ltn-movies trains a small Logic Tensor Networks knowledge base: 8 people
// with trainable embeddings, 4 movies with fixed genre features, and a
// trainable Likes(person, movie) predicate. The knowledge base combines
// observed like/dislike facts with a soft rule -- people who like a movie
// tend to like movies with a similar genre -- and gradient descent maximizes
// the aggregated satisfaction of all axioms.
//
// The universal-quantifier sharpness is annealed from -p_start to -p_end over
// the training steps: existential-like (small p, dense gradients) early,
// universal-like (large p, close to a hard minimum) late.
package main

import (
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/ltn"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/gomlx/backends/default"
)

var (
	flagSteps        = flag.Int("steps", 2000, "Number of training steps")
	flagLearningRate = flag.Float64("learning_rate", 0.01, "Adam learning rate")
	flagPStart       = flag.Float64("p_start", 1, "Quantifier sharpness at the first step")
	flagPEnd         = flag.Float64("p_end", 6, "Quantifier sharpness at the last step")
	flagAggP         = flag.Float64("agg_p", 2, "Satisfaction aggregator sharpness")
	flagEmbeddingDim = flag.Int("embedding_dim", 4, "Size of the person embeddings")
	flagHiddenNodes  = flag.Int("hidden_nodes", 16, "Hidden layer width of the Likes predicate")
	flagReportEvery  = flag.Int("report_every", 500, "Steps between satisfaction reports")
)

var (
	people = []string{"alice", "bob", "carol", "dave", "eve", "frank", "grace", "heidi"}

	movies = []string{"screwball", "tearjerker", "heist", "slasher"}

	// Genre features per movie: (comedy, drama).
	movieFeatures = map[string][]float32{
		"screwball":  {1.0, 0.1},
		"tearjerker": {0.1, 1.0},
		"heist":      {0.7, 0.4},
		"slasher":    {0.2, 0.8},
	}
)

// fact is one observed Likes(person, movie) ground truth.
type fact struct {
	person, movie string
	likes         bool
}

var facts = []fact{
	{"alice", "screwball", true},
	{"alice", "tearjerker", false},
	{"bob", "screwball", true},
	{"bob", "heist", true},
	{"carol", "tearjerker", true},
	{"carol", "slasher", true},
	{"dave", "heist", true},
	{"dave", "tearjerker", false},
	{"eve", "slasher", true},
	{"eve", "screwball", false},
	{"frank", "screwball", true},
	{"frank", "slasher", false},
	{"grace", "tearjerker", true},
	{"heidi", "heist", false},
}

// buildKnowledgeBase assembles the store, predicates and axioms.
func buildKnowledgeBase(ctx *context.Context) (*ltn.KnowledgeBase, *ltn.Predicate) {
	logic := ltn.NewLogic()
	store := ltn.NewStore(ctx)
	for _, movie := range movies {
		store.Define(movie, movieFeatures[movie], false)
	}
	for _, person := range people {
		store.DefineWithShape(person, shapes.Make(dtypes.Float32, *flagEmbeddingDim), true)
	}

	likes := ltn.NewMLPPredicate("Likes", 1, *flagHiddenNodes)

	// Parameter-free genre similarity: exp(-||m1-m2||^2) in (0, 1].
	similar := ltn.NewPredicate("SimilarGenre", func(ctx *context.Context, inputs ...*Node) *Node {
		d := Sub(inputs[0], inputs[1])
		return Exp(Neg(ReduceSum(Mul(d, d), -1)))
	}).WithoutActivation()

	kb := ltn.NewKnowledgeBase(logic, store).WithAggregatorSharpness(*flagAggP)

	// Observed facts, one axiom each.
	for _, f := range facts {
		verb := "likes"
		if !f.likes {
			verb = "dislikes"
		}
		name := fmt.Sprintf("%s-%s-%s", f.person, verb, f.movie)
		kb.AddAxiom(name, func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
			truth := likes.Call(ctx, store.ConstantValue(g, f.person), store.ConstantValue(g, f.movie))
			if !f.likes {
				truth = logic.Not(truth)
			}
			return truth
		})
	}

	// Soft rule: liking a movie transfers to movies with a similar genre.
	kb.AddAxiom("similar-taste", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
		person := store.VariableOver(g, "p", people...)
		m1 := store.VariableOver(g, "m1", movies...)
		m2 := store.VariableOver(g, "m2", movies...)
		premise := logic.And(
			likes.Call(ctx, person, m1),
			similar.Call(ctx, m1, m2))
		return logic.ForAll(p, logic.Implies(premise, likes.Call(ctx, person, m2)))
	})

	// Every movie has an audience.
	kb.AddAxiom("every-movie-liked", func(ctx *context.Context, g *Graph, p *Node) *ltn.Value {
		person := store.VariableOver(g, "p", people...)
		movie := store.VariableOver(g, "m", movies...)
		return logic.ForAll(p, logic.Exists(p, likes.Call(ctx, person, movie), "p"), "m")
	})

	return kb, likes
}

// sharpnessAt interpolates the quantifier sharpness schedule for step i.
func sharpnessAt(i int) float32 {
	if *flagSteps <= 1 {
		return float32(*flagPEnd)
	}
	frac := float64(i) / float64(*flagSteps-1)
	return float32(*flagPStart + (*flagPEnd-*flagPStart)*frac)
}

func main() {
	flag.Parse()
	backend := backends.MustNew()
	klog.Infof("Backend: %s, %s", backend.Name(), backend.Description())

	ctx := context.New()
	kb, likes := buildKnowledgeBase(ctx)
	store := kb.Store()
	klog.Infof("Knowledge base: %d axioms over %d groundings", len(kb.AxiomNames()), len(store.Names()))

	optimizer := optimizers.Adam().LearningRate(*flagLearningRate).Done()
	step := context.MustNewExec(backend, ctx, kb.TrainStep(optimizer))

	bar := progressbar.Default(int64(*flagSteps), "training")
	var satisfaction float32
	for i := 0; i < *flagSteps; i++ {
		p := sharpnessAt(i)
		satisfaction = tensors.ToScalar[float32](step.MustExec(p)[0])
		must.M(bar.Add(1))
		if (i+1)%*flagReportEvery == 0 {
			klog.Infof("step %d: satisfaction=%.4f (p=%.2f)", i+1, satisfaction, p)
		}
	}
	must.M(bar.Finish())
	klog.Infof("Final satisfaction: %.4f", satisfaction)
	klog.Infof("Trained %s parameters", humanize.Comma(int64(ctx.NumParameters())))

	// Learned truth table, including the unobserved pairs.
	inference := context.MustNewExec(backend, ctx, func(ctx *context.Context, g *Graph) *Node {
		person := store.VariableOver(g, "p", people...)
		movie := store.VariableOver(g, "m", movies...)
		return likes.Call(ctx, person, movie).Node()
	})
	table := inference.MustExec()[0].Value().([][]float32)

	fmt.Printf("\nLikes(person, movie):\n%10s", "")
	for _, movie := range movies {
		fmt.Printf(" %10s", movie)
	}
	fmt.Println()
	for i, person := range people {
		fmt.Printf("%10s", person)
		for j := range movies {
			fmt.Printf(" %10.3f", table[i][j])
		}
		fmt.Println()
	}
}
