package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog([]string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"A", "B", "C"}, c.Names())

	i, ok := c.Index("C")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = c.Index("D")
	assert.False(t, ok)
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		names []string
	}{
		{"empty", nil},
		{"blank name", []string{"A", " "}},
		{"duplicate", []string{"A", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.names)
			assert.Error(t, err)
		})
	}
}

func TestCatalog_NamesIsCopy(t *testing.T) {
	c, err := NewCatalog([]string{"A", "B"})
	require.NoError(t, err)
	n := c.Names()
	n[0] = "Z"
	assert.Equal(t, []string{"A", "B"}, c.Names())
}

func TestNewImportantSet(t *testing.T) {
	c, err := NewCatalog([]string{"A", "B", "C"})
	require.NoError(t, err)

	s, err := NewImportantSet(c, []string{"C", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, s.Names())
	assert.True(t, s.Contains("A"))
	assert.False(t, s.Contains("B"))

	_, err = NewImportantSet(c, []string{"D"})
	assert.Error(t, err)

	_, err = NewImportantSet(c, []string{"A", "A"})
	assert.Error(t, err)

	_, err = NewImportantSet(nil, []string{"A"})
	assert.Error(t, err)
}

func TestMeans_CopiesInput(t *testing.T) {
	src := map[string]float64{"A": 1}
	m := NewMeans(src)
	src["A"] = 2

	v, ok := m.Get("A")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	out := m.Values()
	out["A"] = 3
	v, _ = m.Get("A")
	assert.Equal(t, 1.0, v)
}

func TestMeans_Missing(t *testing.T) {
	c, err := NewCatalog([]string{"A", "B", "C"})
	require.NoError(t, err)
	m := NewMeans(map[string]float64{"B": 1, "X": 2})
	assert.Equal(t, []string{"A", "C"}, m.Missing(c))
}

func TestVector_Equal(t *testing.T) {
	assert.True(t, Vector{1, math.NaN()}.Equal(Vector{1, math.NaN()}))
	assert.False(t, Vector{1, 2}.Equal(Vector{1, 3}))
	assert.False(t, Vector{1}.Equal(Vector{1, 2}))
}

func TestVector_RowIsCopy(t *testing.T) {
	v := Vector{1, 2}
	row := v.Row()
	require.Len(t, row, 1)
	row[0][0] = 9
	assert.Equal(t, 1.0, v[0])
}
