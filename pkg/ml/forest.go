package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Class balancing modes for forest construction.
const (
	BalanceNone     = "none"
	BalanceBalanced = "balanced"
)

// ForestParams are the training knobs of the ensemble. The zero value
// is usable: withDefaults fills in the canonical settings (100 trees,
// unbounded depth, leaf size 1, balanced classes), matching the
// behavior the gateway was originally tuned against.
type ForestParams struct {
	Trees        int    `json:"trees" yaml:"trees"`
	MaxDepth     int    `json:"max_depth" yaml:"max_depth"` // 0 = unbounded
	MinLeafSize  int    `json:"min_leaf_size" yaml:"min_leaf_size"`
	ClassBalance string `json:"class_balance" yaml:"class_balance"` // "balanced" or "none"
	Seed         int64  `json:"seed" yaml:"seed"`
}

func (p ForestParams) withDefaults() ForestParams {
	if p.Trees <= 0 {
		p.Trees = 100
	}
	if p.MinLeafSize <= 0 {
		p.MinLeafSize = 1
	}
	if p.ClassBalance == "" {
		p.ClassBalance = BalanceBalanced
	}
	return p
}

// Forest is a bagged ensemble of randomized classification trees.
// Each tree is grown on a bootstrap resample with randomized
// feature/threshold selection per split; prediction averages the
// trees' leaf probabilities. Read-only after FitForest returns, so a
// single Forest may serve any number of concurrent predictions.
type Forest struct {
	Params      ForestParams `json:"params"`
	NumFeatures int          `json:"num_features"`
	Trees       []*treeNode  `json:"trees"`
}

// FitForest trains the ensemble. Training is deterministic for a fixed
// params.Seed: tree i derives its own rng seed from the base seed, so
// the parallel construction below cannot reorder results.
func FitForest(x [][]float64, y []bool, params ForestParams) (*Forest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("fit forest: empty training set")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit forest: %d vectors but %d labels", len(x), len(y))
	}
	numFeatures := len(x[0])
	for i, row := range x {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("fit forest: vector %d has width %d, want %d", i, len(row), numFeatures)
		}
	}

	params = params.withDefaults()
	weights, err := classWeights(y, params.ClassBalance)
	if err != nil {
		return nil, err
	}

	f := &Forest{
		Params:      params,
		NumFeatures: numFeatures,
		Trees:       make([]*treeNode, params.Trees),
	}
	mtry := int(math.Sqrt(float64(numFeatures)))
	if mtry < 1 {
		mtry = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < params.Trees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Knuth multiplicative step keeps per-tree streams apart.
			rng := rand.New(rand.NewSource(params.Seed + int64(i)*2654435761))
			sample := bootstrap(len(x), rng)
			tb := &treeBuilder{
				x:       x,
				y:       y,
				weights: weights,
				rng:     rng,
				params:  params,
				mtry:    mtry,
			}
			f.Trees[i] = tb.build(sample, 0)
		}(i)
	}
	wg.Wait()

	return f, nil
}

// PredictProbability returns the mean over all trees of the estimated
// probability that x is a positive (attack) example. Always in [0,1].
func (f *Forest) PredictProbability(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

// bootstrap draws n indices with replacement.
func bootstrap(n int, rng *rand.Rand) []int {
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}
	return sample
}

// classWeights returns the per-class example weights. "balanced"
// reweights inversely to class frequency (n / 2*n_class) so the rare
// attack class is not drowned out; "none" weights every example 1.
func classWeights(y []bool, mode string) ([2]float64, error) {
	switch mode {
	case BalanceNone:
		return [2]float64{1, 1}, nil
	case BalanceBalanced:
		var pos int
		for _, label := range y {
			if label {
				pos++
			}
		}
		neg := len(y) - pos
		if pos == 0 || neg == 0 {
			// Single-class data: weights degenerate, fall back to uniform.
			return [2]float64{1, 1}, nil
		}
		n := float64(len(y))
		return [2]float64{n / (2 * float64(neg)), n / (2 * float64(pos))}, nil
	default:
		return [2]float64{}, fmt.Errorf("fit forest: unknown class balance mode %q", mode)
	}
}
