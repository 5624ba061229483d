package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabelEncoder_Forms(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"wrapped", `{"classes":["AI","Jaringan","RPL"]}`},
		{"array", `["AI","Jaringan","RPL"]`},
		{"index map", `{"2":"RPL","0":"AI","1":"Jaringan"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseLabelEncoder([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, []string{"AI", "Jaringan", "RPL"}, e.Classes())
		})
	}
}

func TestParseLabelEncoder_Invalid(t *testing.T) {
	tests := []string{
		`{"0":"A","2":"B"}`,
		`{"x":"A"}`,
		`["A","A"]`,
		`[""]`,
		`{`,
	}
	for _, j := range tests {
		_, err := ParseLabelEncoder([]byte(j))
		assert.Error(t, err, j)
	}
}

func TestLabelEncoder_Decode(t *testing.T) {
	e, err := NewLabelEncoder([]string{"AI", "RPL"})
	require.NoError(t, err)

	l, err := e.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, "RPL", l)

	_, err = e.Decode(2)
	assert.Error(t, err)
	_, err = e.Decode(-1)
	assert.Error(t, err)
}

func TestLabelEncoder_ClassesIsCopy(t *testing.T) {
	e, err := NewLabelEncoder([]string{"AI", "RPL"})
	require.NoError(t, err)
	c := e.Classes()
	c[0] = "X"
	assert.Equal(t, []string{"AI", "RPL"}, e.Classes())
}
