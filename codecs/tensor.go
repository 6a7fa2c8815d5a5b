package codecs

import (
	"fmt"

	"github.com/modalityml/omnitok/options"
)

// Tensor is the neutral float32 tensor that crosses the backend boundary.
// Both inference backends convert to and from their native representation.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewTensor allocates a zero-filled tensor of the given shape.
func NewTensor(shape ...int64) *Tensor {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return &Tensor{Shape: shape, Data: make([]float32, n)}
}

// Elements returns the number of elements implied by the shape.
func (t *Tensor) Elements() int64 {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// InputOutputInfo describes one model input or output.
type InputOutputInfo struct {
	Name       string
	Dimensions []int64
}

func names(info []InputOutputInfo) []string {
	out := make([]string, 0, len(info))
	for _, v := range info {
		out = append(out, v.Name)
	}
	return out
}

func hasInput(info []InputOutputInfo, name string) bool {
	for _, v := range info {
		if v.Name == name {
			return true
		}
	}
	return false
}

// session is one loaded onnx graph. Implementations exist per backend behind
// build tags; tests substitute fakes.
type session interface {
	// run executes the graph. outputShapes resolves dynamic output
	// dimensions for backends that must preallocate.
	run(inputs map[string]*Tensor, outputShapes map[string][]int64) (map[string]*Tensor, error)
	inputs() []InputOutputInfo
	outputs() []InputOutputInfo
	destroy() error
}

func newSession(onnxBytes []byte, o *options.Options) (session, error) {
	switch o.Backend {
	case "ORT":
		return newORTSession(onnxBytes, o)
	case "GO":
		return newGoSession(onnxBytes)
	default:
		return nil, fmt.Errorf("backend %q not recognized", o.Backend)
	}
}
