package contract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeysAtEveryDepth(t *testing.T) {
	t.Parallel()

	a := map[string]any{
		"z": 1,
		"a": map[string]any{"y": 2, "b": 3},
	}
	b := map[string]any{
		"a": map[string]any{"b": 3, "y": 2},
		"z": 1,
	}

	canonA, err := CanonicalJSON(a)
	require.NoError(t, err)
	canonB, err := CanonicalJSON(b)
	require.NoError(t, err)

	require.Equal(t, canonA, canonB)
	require.Equal(t, `{"a":{"b":3,"y":2},"z":1}`, string(canonA))
}

func TestCanonicalJSON_StableAcrossStructFieldOrder(t *testing.T) {
	t.Parallel()

	type inner struct {
		B int `json:"b"`
		A int `json:"a"`
	}
	type outer struct {
		Z int   `json:"z"`
		I inner `json:"i"`
	}

	out, err := CanonicalJSON(outer{Z: 1, I: inner{A: 2, B: 3}})
	require.NoError(t, err)
	require.Equal(t, `{"i":{"a":2,"b":3},"z":1}`, string(out))
}

func TestCanonicalJSON_PreservesArrayOrder(t *testing.T) {
	t.Parallel()

	out, err := CanonicalJSON([]any{3, 1, 2})
	require.NoError(t, err)
	require.Equal(t, `[3,1,2]`, string(out))
}

func TestCanonicalJSON_RejectsNaN(t *testing.T) {
	t.Parallel()

	_, err := CanonicalJSON(map[string]any{"x": math.NaN()})
	require.Error(t, err)
}

func TestSHA256Hex_IsDeterministic(t *testing.T) {
	t.Parallel()

	h1 := SHA256Hex([]byte("hello"))
	h2 := SHA256Hex([]byte("hello"))
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
	require.NotEqual(t, h1, SHA256Hex([]byte("world")))
}
