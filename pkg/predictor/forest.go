package predictor

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
)

// ForestConfig ランダムフォレストのハイパーパラメータ
type ForestConfig struct {
	NumTrees        int     `json:"num_trees"`
	MaxDepth        int     `json:"max_depth"` // 0 = unlimited
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`
	MaxFeatures     float64 `json:"max_features"` // fraction of features tried per split
	Seed            uint64  `json:"seed"`
	Workers         int     `json:"-"`
}

// DefaultForestConfig returns the defaults used by the trainer.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:        60,
		MaxDepth:        16,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     1.0,
		Seed:            42,
	}
}

// treeNode Feature < 0 は葉ノード
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		var v float64
		if n.Feature < len(x) {
			v = x[n.Feature]
		}
		if v <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// RandomForestRegressor ブートストラップ標本で学習したCART回帰木の平均
type RandomForestRegressor struct {
	Config   ForestConfig     `json:"config"`
	Features int              `json:"features"`
	Trees    []regressionTree `json:"trees"`
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(cfg ForestConfig) *RandomForestRegressor {
	return &RandomForestRegressor{Config: cfg}
}

// Kind implements Regressor.
func (f *RandomForestRegressor) Kind() Kind { return KindRandomForest }

// NumFeatures implements Regressor.
func (f *RandomForestRegressor) NumFeatures() int { return f.Features }

// Fit builds the trees in parallel. Each tree draws from its own RNG stream
// derived from Seed, so the result does not depend on scheduling.
func (f *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	width, err := validateTrainingSet(X, y)
	if err != nil {
		return err
	}
	cfg := f.Config
	if cfg.NumTrees <= 0 {
		return fmt.Errorf("num_trees must be positive, got %d", cfg.NumTrees)
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MaxFeatures <= 0 || cfg.MaxFeatures > 1 {
		cfg.MaxFeatures = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	trees := make([]regressionTree, cfg.NumTrees)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)+1))
				b := &treeBuilder{X: X, y: y, cfg: cfg, width: width, rng: rng}
				trees[t] = b.build(bootstrap(len(y), rng))
			}
		}()
	}
	for t := 0; t < cfg.NumTrees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	f.Config = cfg
	f.Features = width
	f.Trees = trees
	return nil
}

// Predict implements Regressor.
func (f *RandomForestRegressor) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

func bootstrap(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

type treeBuilder struct {
	X     [][]float64
	y     []float64
	cfg   ForestConfig
	width int
	rng   *rand.Rand
	nodes []treeNode
}

func (b *treeBuilder) build(idx []int) regressionTree {
	b.nodes = b.nodes[:0]
	b.grow(idx, 0)
	return regressionTree{Nodes: b.nodes}
}

// grow appends the subtree for idx and returns its root index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	mean := sum / n

	self := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Feature: -1, Value: mean})

	if (b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) ||
		len(idx) < b.cfg.MinSamplesSplit ||
		sumSq-sum*sum/n <= 1e-12 {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self] = treeNode{Feature: feature, Threshold: threshold, Left: l, Right: r, Value: mean}
	return self
}

// bestSplit maximizes sumL²/nL + sumR²/nR, i.e. minimizes the children's squared error.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, float64, bool) {
	candidates := b.candidateFeatures()
	minLeaf := b.cfg.MinSamplesLeaf
	n := len(idx)

	bestScore := total * total / float64(n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, n)
	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		var leftSum float64
		for k := 1; k < n; k++ {
			leftSum += b.y[sorted[k-1]]
			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := b.X[sorted[k-1]][f], b.X[sorted[k]][f]
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(k) + rightSum*rightSum/float64(n-k)
			if score > bestScore+1e-9 {
				bestScore = score
				bestFeature = f
				bestThreshold = (lo + hi) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) candidateFeatures() []int {
	k := int(b.cfg.MaxFeatures * float64(b.width))
	if k < 1 {
		k = 1
	}
	if k >= b.width {
		all := make([]int, b.width)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := b.rng.Perm(b.width)[:k]
	sort.Ints(perm)
	return perm
}
