package tree

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Training defaults for the price model.
const (
	DefaultMaxDepth       = 6
	DefaultMinSamplesLeaf = 20
)

var (
	ErrEmptyInput = errors.New("tree: empty X")
	ErrMismatch   = errors.New("tree: X and y length mismatch")
	ErrNotFitted  = errors.New("tree: regressor is not fitted")
)

// DecisionTreeRegressor is a CART regression tree using the squared-error
// criterion. Leaves predict the mean target of their training samples.
type DecisionTreeRegressor struct {
	MaxDepth        int // root depth = 0; 0 => no limit
	MinSamplesSplit int
	MinSamplesLeaf  int

	root      *Node
	nFeatures int
}

// Node is one node of a fitted tree. Samples with x[Feature] <= Threshold go left.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Value     float64
	Samples   int
	Left      *Node
	Right     *Node
}

// Option configures a regressor.
type Option func(*DecisionTreeRegressor)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}

// NewDecisionTreeRegressor returns a regressor with the price model defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		MaxDepth:        DefaultMaxDepth,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
	}
	for _, o := range opts {
		o(t)
	}
	if t.MinSamplesLeaf < 1 {
		t.MinSamplesLeaf = 1
	}
	if t.MinSamplesSplit < 2 {
		t.MinSamplesSplit = 2
	}
	return t
}

// Fitted reports whether Fit has built a tree.
func (t *DecisionTreeRegressor) Fitted() bool { return t.root != nil }

// NumFeatures is the input width seen at fit time.
func (t *DecisionTreeRegressor) NumFeatures() int { return t.nFeatures }

// Fit grows the tree on X (n x p) and targets y.
func (t *DecisionTreeRegressor) Fit(X [][]float64, y []float64) error {
	return t.FitContext(context.Background(), X, y)
}

// FitContext is Fit with cancellation between split searches.
func (t *DecisionTreeRegressor) FitContext(ctx context.Context, X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrEmptyInput
	}
	if len(y) != len(X) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrMismatch, len(X), len(y))
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return fmt.Errorf("tree: row %d has %d features, want %d", i, len(X[i]), p)
		}
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	b := &builder{tree: t, X: X, y: y, p: p}
	root, err := b.build(ctx, idx, 0)
	if err != nil {
		return err
	}
	t.root = root
	t.nFeatures = p
	return nil
}

// Predict returns one prediction per row of X. An unfitted tree predicts 0.
func (t *DecisionTreeRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = t.PredictOne(x)
	}
	return out
}

// PredictOne walks the tree for a single feature vector.
func (t *DecisionTreeRegressor) PredictOne(x []float64) float64 {
	node := t.root
	if node == nil {
		return 0
	}
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// Depth is the length of the longest root-to-leaf path.
func (t *DecisionTreeRegressor) Depth() int { return depth(t.root) }

// Leaves is the number of leaf nodes.
func (t *DecisionTreeRegressor) Leaves() int { return leaves(t.root) }

func depth(n *Node) int {
	if n == nil || n.Leaf {
		return 0
	}
	return 1 + max(depth(n.Left), depth(n.Right))
}

func leaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return 1
	}
	return leaves(n.Left) + leaves(n.Right)
}

// ---------------------------
// Serialization
// ---------------------------

type regressorState struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	NFeatures       int
	Root            *Node
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (t *DecisionTreeRegressor) MarshalBinary() ([]byte, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(regressorState{
		MaxDepth:        t.MaxDepth,
		MinSamplesSplit: t.MinSamplesSplit,
		MinSamplesLeaf:  t.MinSamplesLeaf,
		NFeatures:       t.nFeatures,
		Root:            t.root,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (t *DecisionTreeRegressor) UnmarshalBinary(data []byte) error {
	var s regressorState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	if s.Root == nil {
		return ErrNotFitted
	}
	if err := validate(s.Root, s.NFeatures); err != nil {
		return err
	}
	t.MaxDepth = s.MaxDepth
	t.MinSamplesSplit = s.MinSamplesSplit
	t.MinSamplesLeaf = s.MinSamplesLeaf
	t.nFeatures = s.NFeatures
	t.root = s.Root
	return nil
}

func validate(n *Node, p int) error {
	if n.Leaf {
		return nil
	}
	if n.Feature < 0 || n.Feature >= p {
		return fmt.Errorf("tree: node splits on feature %d of %d", n.Feature, p)
	}
	if n.Left == nil || n.Right == nil {
		return errors.New("tree: internal node is missing a child")
	}
	if err := validate(n.Left, p); err != nil {
		return err
	}
	return validate(n.Right, p)
}

// ---------------------------
// Builder
// ---------------------------

type builder struct {
	tree *DecisionTreeRegressor
	X    [][]float64
	y    []float64
	p    int
}

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	found     bool
}

// pair is a feature value and its sample index.
type pair struct {
	v float64
	i int
}

func (b *builder) build(ctx context.Context, idx []int, d int) (*Node, error) {
	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	node := &Node{Leaf: true, Value: sum / n, Samples: len(idx)}
	parentSSE := sumSq - sum*sum/n

	t := b.tree
	if parentSSE <= 0 || len(idx) < t.MinSamplesSplit || len(idx) < 2*t.MinSamplesLeaf {
		return node, nil
	}
	if t.MaxDepth > 0 && d >= t.MaxDepth {
		return node, nil
	}

	best, err := b.bestSplit(ctx, idx, parentSSE)
	if err != nil {
		return nil, err
	}
	if !best.found {
		return node, nil
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Leaf = false
	node.Feature = best.feature
	node.Threshold = best.threshold
	if node.Left, err = b.build(ctx, left, d+1); err != nil {
		return nil, err
	}
	if node.Right, err = b.build(ctx, right, d+1); err != nil {
		return nil, err
	}
	return node, nil
}

// bestSplit searches every feature in parallel and keeps the highest gain.
// Ties go to the lowest feature index so the tree does not depend on scheduling.
func (b *builder) bestSplit(ctx context.Context, idx []int, parentSSE float64) (splitResult, error) {
	results := make([]splitResult, b.p)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for f := 0; f < b.p; f++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[f] = b.bestSplitForFeature(idx, f, parentSSE)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return splitResult{}, err
	}

	var best splitResult
	for _, r := range results {
		if r.found && (!best.found || r.gain > best.gain) {
			best = r
		}
	}
	return best, nil
}

// bestSplitForFeature scans midpoints between adjacent distinct values using
// running sums, so each candidate costs O(1).
func (b *builder) bestSplitForFeature(idx []int, f int, parentSSE float64) splitResult {
	result := splitResult{feature: f}
	valid := make([]pair, len(idx))
	var totalSum, totalSq float64
	for k, i := range idx {
		valid[k] = pair{b.X[i][f], i}
		totalSum += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}
	sort.Slice(valid, func(a, c int) bool {
		if valid[a].v != valid[c].v {
			return valid[a].v < valid[c].v
		}
		return valid[a].i < valid[c].i
	})

	minLeaf := b.tree.MinSamplesLeaf
	n := len(valid)
	var leftSum, leftSq float64
	for s := 1; s < n; s++ {
		yv := b.y[valid[s-1].i]
		leftSum += yv
		leftSq += yv * yv
		if valid[s].v == valid[s-1].v {
			continue
		}
		if s < minLeaf || n-s < minLeaf {
			continue
		}
		nl, nr := float64(s), float64(n-s)
		rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
		sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
		gain := parentSSE - sse
		if gain > 1e-12 && (!result.found || gain > result.gain) {
			result.found = true
			result.gain = gain
			result.threshold = (valid[s-1].v + valid[s].v) / 2.0
		}
	}
	return result
}
