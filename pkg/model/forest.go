package model

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// forest is a bagged ensemble of regression trees.
type forest struct {
	trees      []*tree
	importance []float64
}

func (f *forest) predict(x []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// fitForest grows opts.Trees trees, each on its own bootstrap sample of idx.
// Every tree draws from a generator seeded with (opts.Seed, tree index), so the
// result does not depend on goroutine scheduling.
func fitForest(ctx context.Context, x [][]float64, y []float64, idx []int, opts Options) (*forest, error) {
	f := &forest{
		trees:      make([]*tree, opts.Trees),
		importance: make([]float64, len(featureNames)),
	}
	perTree := make([][]float64, opts.Trees)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < opts.Trees; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(i)))
			sample := make([]int, len(idx))
			for j := range sample {
				sample[j] = idx[rng.IntN(len(idx))]
			}
			f.trees[i], perTree[i] = fitTree(x, y, sample, opts.MaxDepth, opts.MinSamplesLeaf)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, imp := range perTree {
		if s := floats.Sum(imp); s > 0 {
			floats.Scale(1/s, imp)
		}
		floats.Add(f.importance, imp)
	}
	if s := floats.Sum(f.importance); s > 0 {
		floats.Scale(1/s, f.importance)
	}

	slog.Debug("forest fitted", "trees", len(f.trees), "rows", len(idx))
	return f, nil
}

// splitIndices shuffles [0,n) with seed and holds out ceil(n*testFraction)
// rows, always leaving at least one row for training.
func splitIndices(n int, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(n)))
	perm := rng.Perm(n)

	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest > n-1 {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}
