package xjson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProduct struct {
	ID    string   `json:"id"`
	Price int64    `json:"price"`
	Tags  []string `json:"tags,omitempty"`
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "struct", input: testProduct{ID: "p1", Price: 990}, want: `{"id":"p1","price":990}`},
		{name: "map sorted", input: map[string]int{"b": 2, "a": 1, "c": 3}, want: `{"a":1,"b":2,"c":3}`},
		{name: "nested map sorted", input: map[string]any{"z": map[string]int{"y": 1, "x": 2}}, want: `{"z":{"x":2,"y":1}}`},
		{name: "html not escaped", input: "a<b>&c", want: `"a<b>&c"`},
		{name: "nil", input: nil, want: "null"},
		{name: "slice", input: []int{3, 1, 2}, want: "[3,1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonical_Deterministic(t *testing.T) {
	m := map[string]any{}
	for _, k := range []string{"q", "w", "e", "r", "t", "y"} {
		m[k] = k + "-value"
	}
	first, err := Canonical(m)
	require.NoError(t, err)
	for range 20 {
		again, err := Canonical(m)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCanonical_Error(t *testing.T) {
	_, err := Canonical(math.NaN())
	assert.ErrorIs(t, err, ErrMarshal)

	_, err = CanonicalString(make(chan int))
	assert.ErrorIs(t, err, ErrMarshal)
}

func TestPrettyE(t *testing.T) {
	s, err := PrettyE(testProduct{ID: "p1", Price: 1})
	require.NoError(t, err)
	assert.Contains(t, s, `"id": "p1"`)

	_, err = PrettyE(math.Inf(1))
	assert.ErrorIs(t, err, ErrMarshal)
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "[\n  1,\n  2\n]", Pretty([]int{1, 2}))
	assert.Contains(t, Pretty(math.NaN()), "<marshal error:")
}
