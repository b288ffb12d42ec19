package models

import (
	"errors"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultNumTrees    = 100
	DefaultMaxDepth    = 5
	DefaultMinLeafSize = 2
	DefaultSeed        = 1

	// MinDistinctRows is the minimum number of unique feature rows needed to
	// fit a forest. Anything less is a degenerate training set.
	MinDistinctRows = 2
)

var (
	ErrNonPositiveTrees    = errors.New("number of trees must be positive")
	ErrNonPositiveDepth    = errors.New("max depth must be positive")
	ErrNonPositiveLeafSize = errors.New("min leaf size must be positive")
)

// ForestOptions represents input options to fit a bagged regression tree
// ensemble.
type ForestOptions struct {
	// NumTrees is the number of bootstrapped trees in the ensemble.
	NumTrees int

	// MaxDepth bounds how deep each tree may split.
	MaxDepth int

	// MinLeafSize is the smallest number of samples a leaf may hold.
	MinLeafSize int

	// Seed primes the bootstrap sampler. Fitting the same training set with
	// the same seed reproduces predictions bit for bit.
	Seed uint64
}

// Validate runs basic validation on forest options returning defaults if nil.
func (o *ForestOptions) Validate() (*ForestOptions, error) {
	if o == nil {
		o = NewDefaultForestOptions()
	}
	if o.NumTrees <= 0 {
		return nil, ErrNonPositiveTrees
	}
	if o.MaxDepth <= 0 {
		return nil, ErrNonPositiveDepth
	}
	if o.MinLeafSize <= 0 {
		return nil, ErrNonPositiveLeafSize
	}
	return o, nil
}

// NewDefaultForestOptions returns a default set of forest options.
func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		NumTrees:    DefaultNumTrees,
		MaxDepth:    DefaultMaxDepth,
		MinLeafSize: DefaultMinLeafSize,
		Seed:        DefaultSeed,
	}
}

// ForestRegression fits an ensemble of bootstrapped regression trees and
// predicts with the ensemble mean. Trees capture the nonlinear interaction
// between calendar features that a linear fit cannot.
type ForestRegression struct {
	opt *ForestOptions

	trees    []*treeNode
	features int
}

// NewForestRegression initializes a forest model ready for fitting.
func NewForestRegression(opt *ForestOptions) (*ForestRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &ForestRegression{opt: opt}, nil
}

// Fit trains the ensemble on the given design matrix and m x 1 target matrix.
func (f *ForestRegression) Fit(x, y mat.Matrix) error {
	if f.opt == nil {
		return ErrNoOptions
	}
	if err := fitValidate(x, y); err != nil {
		return err
	}

	rows := matrixRows(x)
	if distinctRows(rows) < MinDistinctRows {
		return ErrInsufficientTrainingData
	}

	m := len(rows)
	target := make([]float64, m)
	for i := 0; i < m; i++ {
		target[i] = y.At(i, 0)
	}

	// single sequential sampler keeps the fit reproducible for a fixed seed
	rng := rand.New(rand.NewPCG(f.opt.Seed, f.opt.Seed^0xda3e39cb94b95bdb))

	trees := make([]*treeNode, 0, f.opt.NumTrees)
	sample := make([]int, m)
	for t := 0; t < f.opt.NumTrees; t++ {
		for i := 0; i < m; i++ {
			sample[i] = rng.IntN(m)
		}
		idx := make([]int, m)
		copy(idx, sample)
		trees = append(trees, growTree(rows, target, idx, 0, f.opt))
	}

	f.trees = trees
	f.features = len(rows[0])
	return nil
}

// Predict returns the ensemble mean prediction for each row of the design
// matrix.
func (f *ForestRegression) Predict(x mat.Matrix) ([]float64, error) {
	if f.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if len(f.trees) == 0 {
		return nil, ErrUntrainedModel
	}

	m, n := x.Dims()
	if n != f.features {
		return nil, ErrFeatureLenMismatch
	}

	res := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			row[j] = x.At(i, j)
		}
		var sum float64
		for _, tree := range f.trees {
			sum += tree.predict(row)
		}
		res[i] = sum / float64(len(f.trees))
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction against
// the target.
func (f *ForestRegression) Score(x, y mat.Matrix) (float64, error) {
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}
	res, err := f.Predict(x)
	if err != nil {
		return 0.0, err
	}
	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	value float64
	leaf  bool
}

func (t *treeNode) predict(row []float64) float64 {
	node := t
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func growTree(rows [][]float64, y []float64, idx []int, depth int, opt *ForestOptions) *treeNode {
	if depth >= opt.MaxDepth || len(idx) < 2*opt.MinLeafSize {
		return leafNode(y, idx)
	}

	feat, threshold, ok := bestSplit(rows, y, idx, opt.MinLeafSize)
	if !ok {
		return leafNode(y, idx)
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if rows[i][feat] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		feature:   feat,
		threshold: threshold,
		left:      growTree(rows, y, leftIdx, depth+1, opt),
		right:     growTree(rows, y, rightIdx, depth+1, opt),
	}
}

func leafNode(y []float64, idx []int) *treeNode {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return &treeNode{
		value: sum / float64(len(idx)),
		leaf:  true,
	}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two partitions. Features are scanned in index order so
// ties resolve deterministically.
func bestSplit(rows [][]float64, y []float64, idx []int, minLeaf int) (int, float64, bool) {
	nFeat := len(rows[0])

	bestSSE := sse(y, idx)
	bestFeat := -1
	var bestThreshold float64

	order := make([]int, len(idx))
	for feat := 0; feat < nFeat; feat++ {
		copy(order, idx)
		sortByFeature(rows, order, feat)

		// running sums from the left partition
		var leftSum, leftSqSum float64
		totalSum, totalSqSum := sums(y, idx)

		for i := 0; i < len(order)-1; i++ {
			v := y[order[i]]
			leftSum += v
			leftSqSum += v * v

			// cannot split between equal feature values
			if rows[order[i]][feat] == rows[order[i+1]][feat] {
				continue
			}

			nLeft := i + 1
			nRight := len(order) - nLeft
			if nLeft < minLeaf || nRight < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSqSum := totalSqSum - leftSqSum
			candidate := (leftSqSum - leftSum*leftSum/float64(nLeft)) +
				(rightSqSum - rightSum*rightSum/float64(nRight))

			if candidate < bestSSE {
				bestSSE = candidate
				bestFeat = feat
				bestThreshold = (rows[order[i]][feat] + rows[order[i+1]][feat]) / 2.0
			}
		}
	}

	if bestFeat < 0 {
		return 0, 0.0, false
	}
	return bestFeat, bestThreshold, true
}

func sortByFeature(rows [][]float64, order []int, feat int) {
	// insertion sort keeps the comparator stable on index for deterministic
	// tie handling
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if rows[a][feat] > rows[b][feat] || (rows[a][feat] == rows[b][feat] && a > b) {
				order[j-1], order[j] = b, a
				continue
			}
			break
		}
	}
}

func sums(y []float64, idx []int) (float64, float64) {
	var sum, sqSum float64
	for _, i := range idx {
		sum += y[i]
		sqSum += y[i] * y[i]
	}
	return sum, sqSum
}

func sse(y []float64, idx []int) float64 {
	sum, sqSum := sums(y, idx)
	return sqSum - sum*sum/float64(len(idx))
}
