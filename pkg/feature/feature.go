package feature

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Catalog is the ordered list of every feature the model was trained on.
// The order is the column order the imputer and classifier expect.
type Catalog struct {
	names []string
	index map[string]int
}

// NewCatalog builds a catalog from training-time feature names.
func NewCatalog(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, errors.New("feature catalog is empty")
	}

	c := &Catalog{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return nil, fmt.Errorf("feature catalog entry %d is empty", i)
		}
		if _, ok := c.index[n]; ok {
			return nil, fmt.Errorf("duplicate feature in catalog: %q", n)
		}
		c.names[i] = n
		c.index[n] = i
	}
	return c, nil
}

// Names returns a copy of the feature names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Catalog) Len() int {
	return len(c.names)
}

// Index returns the column of the named feature.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// ImportantSet is the subset of catalog features exposed for direct editing.
// Order only drives form layout.
type ImportantSet struct {
	names  []string
	member map[string]struct{}
}

// NewImportantSet validates the names against the catalog.
func NewImportantSet(c *Catalog, names []string) (*ImportantSet, error) {
	if c == nil {
		return nil, errors.New("catalog required")
	}

	s := &ImportantSet{
		names:  make([]string, 0, len(names)),
		member: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		if !c.Contains(n) {
			return nil, fmt.Errorf("important feature %q is not in the feature catalog", n)
		}
		if _, ok := s.member[n]; ok {
			return nil, fmt.Errorf("duplicate important feature: %q", n)
		}
		s.names = append(s.names, n)
		s.member[n] = struct{}{}
	}
	return s, nil
}

// Names returns a copy of the important feature names in layout order.
func (s *ImportantSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *ImportantSet) Len() int {
	return len(s.names)
}

func (s *ImportantSet) Contains(name string) bool {
	_, ok := s.member[name]
	return ok
}

// Means holds the default value used for every feature the user does not supply.
// A NaN mean is a present value left for the imputer to fill.
type Means struct {
	values map[string]float64
}

// NewMeans copies the provided values so later changes to the map are not observed.
func NewMeans(values map[string]float64) *Means {
	m := &Means{values: make(map[string]float64, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the mean for the named feature.
func (m *Means) Get(name string) (float64, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *Means) Len() int {
	return len(m.values)
}

// Values returns a copy of the underlying mapping.
func (m *Means) Values() map[string]float64 {
	out := make(map[string]float64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Missing lists catalog features that have no mean, in catalog order.
func (m *Means) Missing(c *Catalog) []string {
	var out []string
	for _, n := range c.names {
		if _, ok := m.values[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// Vector is a feature vector aligned 1:1 with a Catalog.
type Vector []float64

// Equal reports whether both vectors hold the same values, treating NaN as equal to NaN.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if math.IsNaN(v[i]) && math.IsNaN(o[i]) {
			continue
		}
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// Row returns the vector as a single-row matrix.
func (v Vector) Row() [][]float64 {
	row := make([]float64, len(v))
	copy(row, v)
	return [][]float64{row}
}
