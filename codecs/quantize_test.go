package codecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCodebook(t *testing.T) {
	cb, err := LoadCodebook([]byte(`{"dim": 2, "codes": [[0, 0], [1, 0], [0, 1]]}`))
	require.NoError(t, err)
	assert.Equal(t, 3, cb.Size())
	assert.Equal(t, 2, cb.Dim())

	tests := []struct {
		name string
		data string
	}{
		{"zero dimension", `{"dim": 0, "codes": [[1]]}`},
		{"no vectors", `{"dim": 2, "codes": []}`},
		{"ragged vector", `{"dim": 2, "codes": [[0, 0], [1]]}`},
		{"not json", `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCodebook([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestQuantizeNearest(t *testing.T) {
	cb, err := NewCodebook(2, []float32{
		0, 0,
		1, 0,
		0, 1,
	})
	require.NoError(t, err)

	codes, err := cb.Quantize([]float32{
		0.9, 0.1,
		0.0, 0.0,
		0.1, 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, codes)
}

func TestQuantizeTieBreaksToLowestIndex(t *testing.T) {
	cb, err := NewCodebook(1, []float32{0, 2})
	require.NoError(t, err)

	// 1.0 is equidistant from both entries.
	codes, err := cb.Quantize([]float32{1})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, codes)
}

func TestQuantizeRejectsRaggedInput(t *testing.T) {
	cb, err := NewCodebook(2, []float32{0, 0, 1, 1})
	require.NoError(t, err)

	_, err = cb.Quantize([]float32{1, 2, 3})
	assert.Error(t, err)
	_, err = cb.Quantize(nil)
	assert.Error(t, err)
}

func TestLookupRoundTrip(t *testing.T) {
	vectors := []float32{
		0.5, -0.5,
		2, 3,
	}
	cb, err := NewCodebook(2, vectors)
	require.NoError(t, err)

	out, err := cb.Lookup([]int{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3, 0.5, -0.5, 2, 3}, out)

	// Quantizing an exact codebook row recovers its index.
	codes, err := cb.Quantize(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, codes)
}

func TestLookupInvalidCode(t *testing.T) {
	cb, err := NewCodebook(2, []float32{0, 0, 1, 1})
	require.NoError(t, err)

	_, err = cb.Lookup([]int{0, 5})
	var codeErr *InvalidCodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 5, codeErr.Code)
	assert.Equal(t, 1, codeErr.Index)
	assert.Equal(t, 2, codeErr.Size)

	_, err = cb.Lookup([]int{-1})
	assert.ErrorAs(t, err, &codeErr)
}
