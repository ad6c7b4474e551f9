package model

import (
	"cmp"
	"slices"
)

const leaf = -1

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// tree is a CART regression tree stored as a flat node slice, root at 0.
type tree struct {
	nodes []node
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature == leaf {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

type treeBuilder struct {
	x          [][]float64
	y          []float64
	maxDepth   int
	minLeaf    int
	nodes      []node
	importance []float64
}

// fitTree grows a tree on the rows referenced by idx (duplicates allowed) using
// the squared error criterion. Impurity decreases are accumulated per feature
// into the returned importance slice.
func fitTree(x [][]float64, y []float64, idx []int, maxDepth, minLeaf int) (*tree, []float64) {
	b := &treeBuilder{
		x:          x,
		y:          y,
		maxDepth:   maxDepth,
		minLeaf:    max(minLeaf, 1),
		importance: make([]float64, len(featureNames)),
	}
	b.grow(idx, 0)
	return &tree{nodes: b.nodes}, b.importance
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	id := len(b.nodes)
	sum, sumSq := b.sums(idx)
	n := float64(len(idx))
	b.nodes = append(b.nodes, node{feature: leaf, value: sum / n})

	if b.maxDepth > 0 && depth >= b.maxDepth {
		return id
	}
	if len(idx) < 2*b.minLeaf {
		return id
	}

	parentSSE := sumSq - sum*sum/n
	if parentSSE <= 0 {
		return id
	}

	feature, threshold, sse, ok := b.bestSplit(idx)
	if !ok || sse >= parentSSE {
		return id
	}
	b.importance[feature] += parentSSE - sse

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id].feature = feature
	b.nodes[id].threshold = threshold
	b.nodes[id].left = l
	b.nodes[id].right = r
	return id
}

func (b *treeBuilder) sums(idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	return sum, sumSq
}

// bestSplit scans every feature for the threshold that minimizes the summed
// squared error of both children. Ties keep the first candidate found.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold, sse float64, ok bool) {
	n := len(idx)
	sorted := make([]int, n)
	prefix := make([]float64, n+1)
	prefixSq := make([]float64, n+1)

	for f := range featureNames {
		copy(sorted, idx)
		slices.SortStableFunc(sorted, func(a, c int) int {
			return cmp.Compare(b.x[a][f], b.x[c][f])
		})

		for k, i := range sorted {
			prefix[k+1] = prefix[k] + b.y[i]
			prefixSq[k+1] = prefixSq[k] + b.y[i]*b.y[i]
		}

		for k := b.minLeaf; k <= n-b.minLeaf; k++ {
			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			ls, rs := prefix[k], prefix[n]-prefix[k]
			cand := (prefixSq[k] - ls*ls/nl) + (prefixSq[n] - prefixSq[k] - rs*rs/nr)
			if !ok || cand < sse {
				t := lo + (hi-lo)/2
				if t >= hi {
					t = lo
				}
				feature, threshold, sse, ok = f, t, cand, true
			}
		}
	}
	return feature, threshold, sse, ok
}
