package codecs

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Codebook is the fixed mapping from code index to embedding vector, owned by
// one codec and read-only after load.
type Codebook struct {
	dim     int
	vectors []float32 // flattened, size*dim
}

type codebookFile struct {
	Dim   int         `json:"dim"`
	Codes [][]float32 `json:"codes"`
}

// LoadCodebook parses a codebook from its JSON form.
func LoadCodebook(data []byte) (*Codebook, error) {
	var file codebookFile
	if err := jsoniter.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing codebook: %w", err)
	}
	if file.Dim <= 0 {
		return nil, fmt.Errorf("codebook dimension must be positive, got %d", file.Dim)
	}
	if len(file.Codes) == 0 {
		return nil, fmt.Errorf("codebook holds no vectors")
	}
	cb := &Codebook{dim: file.Dim, vectors: make([]float32, 0, len(file.Codes)*file.Dim)}
	for i, vec := range file.Codes {
		if len(vec) != file.Dim {
			return nil, fmt.Errorf("codebook vector %d has dimension %d, want %d", i, len(vec), file.Dim)
		}
		cb.vectors = append(cb.vectors, vec...)
	}
	return cb, nil
}

// NewCodebook builds a codebook from already-flattened vectors. Used by tests
// and by bundles that ship raw float data.
func NewCodebook(dim int, vectors []float32) (*Codebook, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("codebook dimension must be positive, got %d", dim)
	}
	if len(vectors) == 0 || len(vectors)%dim != 0 {
		return nil, fmt.Errorf("codebook data length %d is not a multiple of dimension %d", len(vectors), dim)
	}
	return &Codebook{dim: dim, vectors: vectors}, nil
}

// Size returns the number of codes.
func (cb *Codebook) Size() int {
	return len(cb.vectors) / cb.dim
}

// Dim returns the embedding dimension.
func (cb *Codebook) Dim() int {
	return cb.dim
}

// Quantize maps each row of latents (flattened, rows*dim) to the index of the
// nearest codebook vector by squared L2 distance. Ties resolve to the lowest
// index, so quantization is deterministic.
func (cb *Codebook) Quantize(latents []float32) ([]int, error) {
	if len(latents) == 0 || len(latents)%cb.dim != 0 {
		return nil, fmt.Errorf("latent length %d is not a multiple of codebook dimension %d", len(latents), cb.dim)
	}
	rows := len(latents) / cb.dim
	size := cb.Size()
	codes := make([]int, rows)
	for row := 0; row < rows; row++ {
		vec := latents[row*cb.dim : (row+1)*cb.dim]
		best := 0
		bestDist := float32(0)
		for c := 0; c < size; c++ {
			entry := cb.vectors[c*cb.dim : (c+1)*cb.dim]
			var dist float32
			for i, v := range vec {
				d := v - entry[i]
				dist += d * d
			}
			if c == 0 || dist < bestDist {
				best = c
				bestDist = dist
			}
		}
		codes[row] = best
	}
	return codes, nil
}

// Lookup concatenates the embedding vectors for a code sequence.
func (cb *Codebook) Lookup(codes []int) ([]float32, error) {
	size := cb.Size()
	out := make([]float32, 0, len(codes)*cb.dim)
	for i, code := range codes {
		if code < 0 || code >= size {
			return nil, &InvalidCodeError{Code: code, Index: i, Size: size}
		}
		out = append(out, cb.vectors[code*cb.dim:(code+1)*cb.dim]...)
	}
	return out, nil
}
