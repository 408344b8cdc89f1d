package ml

import (
	"math"
	"math/rand"
)

// treeNode is a node of a single classification tree. Leaves carry the
// weighted positive-class probability of the training examples that
// reached them. The struct is JSON-tagged because trees are persisted
// inside the artifact.
type treeNode struct {
	Leaf    bool      `json:"leaf"`
	Prob    float64   `json:"prob,omitempty"`
	Feature int       `json:"feature,omitempty"`
	Split   float64   `json:"split,omitempty"`
	Left    *treeNode `json:"left,omitempty"`
	Right   *treeNode `json:"right,omitempty"`
}

// treeBuilder holds the per-tree state during construction. Each tree
// owns its own rng so construction order across goroutines cannot
// change the result.
type treeBuilder struct {
	x       [][]float64
	y       []bool
	weights [2]float64 // class weight for negative/positive examples
	rng     *rand.Rand
	params  ForestParams
	mtry    int
}

func (tb *treeBuilder) build(indices []int, depth int) *treeNode {
	if tb.stop(indices, depth) {
		return &treeNode{Leaf: true, Prob: tb.leafProb(indices)}
	}

	feature, split, ok := tb.bestSplit(indices)
	if !ok {
		return &treeNode{Leaf: true, Prob: tb.leafProb(indices)}
	}

	var left, right []int
	for _, i := range indices {
		if tb.x[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Prob: tb.leafProb(indices)}
	}

	return &treeNode{
		Feature: feature,
		Split:   split,
		Left:    tb.build(left, depth+1),
		Right:   tb.build(right, depth+1),
	}
}

func (tb *treeBuilder) stop(indices []int, depth int) bool {
	if len(indices) <= tb.params.MinLeafSize {
		return true
	}
	if tb.params.MaxDepth > 0 && depth >= tb.params.MaxDepth {
		return true
	}
	// Pure node: all labels identical.
	first := tb.y[indices[0]]
	for _, i := range indices[1:] {
		if tb.y[i] != first {
			return false
		}
	}
	return true
}

// leafProb returns the class-weighted fraction of positive examples.
func (tb *treeBuilder) leafProb(indices []int) float64 {
	var pos, total float64
	for _, i := range indices {
		w := tb.weights[0]
		if tb.y[i] {
			w = tb.weights[1]
			pos += w
		}
		total += w
	}
	if total == 0 {
		return 0
	}
	return pos / total
}

// bestSplit draws mtry random features, pairs each with a random
// threshold between that feature's min and max over the node, and
// keeps the candidate with the lowest weighted Gini impurity.
func (tb *treeBuilder) bestSplit(indices []int) (feature int, split float64, ok bool) {
	numFeatures := len(tb.x[0])
	bestGini := math.Inf(1)

	for k := 0; k < tb.mtry; k++ {
		f := tb.rng.Intn(numFeatures)
		minv, maxv := tb.x[indices[0]][f], tb.x[indices[0]][f]
		for _, i := range indices[1:] {
			v := tb.x[i][f]
			if v < minv {
				minv = v
			}
			if v > maxv {
				maxv = v
			}
		}
		if minv == maxv {
			continue
		}
		s := minv + tb.rng.Float64()*(maxv-minv)
		g := tb.splitGini(indices, f, s)
		if g < bestGini {
			bestGini = g
			feature = f
			split = s
			ok = true
		}
	}
	return feature, split, ok
}

// splitGini computes the weighted average Gini impurity of the two
// children produced by splitting on x[feature] < split.
func (tb *treeBuilder) splitGini(indices []int, feature int, split float64) float64 {
	var lPos, lTot, rPos, rTot float64
	for _, i := range indices {
		w := tb.weights[0]
		if tb.y[i] {
			w = tb.weights[1]
		}
		if tb.x[i][feature] < split {
			lTot += w
			if tb.y[i] {
				lPos += w
			}
		} else {
			rTot += w
			if tb.y[i] {
				rPos += w
			}
		}
	}
	total := lTot + rTot
	if total == 0 {
		return math.Inf(1)
	}
	return lTot/total*gini(lPos, lTot) + rTot/total*gini(rPos, rTot)
}

func gini(pos, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := pos / total
	return 2 * p * (1 - p)
}

// predict walks the tree to a leaf and returns its probability.
func (n *treeNode) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] < n.Split {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Prob
}
