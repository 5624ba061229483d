package model

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// TreeNode is one node of an exported decision tree, in pre-order.
// Leaves have both children set to -1 and carry per-class weights in Value.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n TreeNode) isLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// Tree is a single fitted decision tree.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Forest is a random forest classifier. Class probabilities are the mean
// of the normalized leaf weights of every tree; the prediction is the
// class with the highest probability.
type Forest struct {
	Features int    `json:"n_features"`
	Classes  int    `json:"n_classes"`
	Trees    []Tree `json:"trees"`
}

// LoadForest reads a forest exported as JSON.
func LoadForest(path string) (*Forest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forest: %w", err)
	}
	return ParseForest(b)
}

func ParseForest(b []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decoding forest: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Forest) validate() error {
	if f.Features <= 0 {
		return errors.New("forest: n_features must be positive")
	}
	if f.Classes <= 0 {
		return errors.New("forest: n_classes must be positive")
	}
	if len(f.Trees) == 0 {
		return errors.New("forest: no trees")
	}

	for t, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("forest: tree %d has no nodes", t)
		}
		for i, n := range tree.Nodes {
			if n.isLeaf() {
				if len(n.Value) != f.Classes {
					return fmt.Errorf("forest: tree %d leaf %d has %d class weights, expected %d", t, i, len(n.Value), f.Classes)
				}
				if sum(n.Value) <= 0 {
					return fmt.Errorf("forest: tree %d leaf %d has no weight", t, i)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= f.Features {
				return fmt.Errorf("forest: tree %d node %d splits on feature %d out of range", t, i, n.Feature)
			}
			// children follow their parent in pre-order
			if n.Left <= i || n.Left >= len(tree.Nodes) || n.Right <= i || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("forest: tree %d node %d has invalid children", t, i)
			}
		}
	}
	return nil
}

func (f *Forest) NumFeatures() int {
	return f.Features
}

func (f *Forest) NumClasses() int {
	return f.Classes
}

func (f *Forest) PredictProba(x [][]float64) ([][]float64, error) {
	if err := checkRows(x, f.Features, "forest"); err != nil {
		return nil, err
	}

	out := make([][]float64, len(x))
	for r, row := range x {
		for j, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("forest: row %d feature %d is NaN", r, j)
			}
		}

		proba := make([]float64, f.Classes)
		for t := range f.Trees {
			leaf := f.Trees[t].leaf(row)
			total := sum(leaf.Value)
			for c, w := range leaf.Value {
				proba[c] += w / total
			}
		}
		n := float64(len(f.Trees))
		for c := range proba {
			proba[c] /= n
		}
		out[r] = proba
	}
	return out, nil
}

func (f *Forest) Predict(x [][]float64) ([]int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for r, p := range proba {
		out[r] = argmax(p)
	}
	return out, nil
}

func (t *Tree) leaf(row []float64) TreeNode {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.isLeaf() {
			return node
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

// argmax returns the first index holding the maximum value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
