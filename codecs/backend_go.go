//go:build GO || ALL

package codecs

import (
	"fmt"

	"github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"
)

type goSession struct {
	model       *gonnx.Model
	inputsMeta  []InputOutputInfo
	outputsMeta []InputOutputInfo
}

func newGoSession(onnxBytes []byte) (session, error) {
	model, err := gonnx.NewModelFromBytes(onnxBytes)
	if err != nil {
		return nil, err
	}

	inputs, outputs := loadInputOutputMetaGo(model)
	return &goSession{
		model:       model,
		inputsMeta:  inputs,
		outputsMeta: outputs,
	}, nil
}

func loadInputOutputMetaGo(model *gonnx.Model) ([]InputOutputInfo, []InputOutputInfo) {
	var inputs, outputs []InputOutputInfo

	inputShapes := model.InputShapes()
	for _, name := range model.InputNames() {
		shape := inputShapes[name]
		dimensions := make([]int64, len(shape))
		for i, d := range shape {
			dimensions[i] = d.Size
		}
		inputs = append(inputs, InputOutputInfo{Name: name, Dimensions: dimensions})
	}
	outputShapes := model.OutputShapes()
	for _, name := range model.OutputNames() {
		shape := outputShapes[name]
		dimensions := make([]int64, len(shape))
		for i, d := range shape {
			dimensions[i] = d.Size
		}
		outputs = append(outputs, InputOutputInfo{Name: name, Dimensions: dimensions})
	}
	return inputs, outputs
}

func (s *goSession) run(inputs map[string]*Tensor, _ map[string][]int64) (map[string]*Tensor, error) {
	inputMap := make(map[string]tensor.Tensor, len(inputs))
	for name, in := range inputs {
		shape := make([]int, len(in.Shape))
		for i, d := range in.Shape {
			shape[i] = int(d)
		}
		inputMap[name] = tensor.New(
			tensor.WithShape(shape...),
			tensor.WithBacking(in.Data),
		)
	}

	results, err := s.model.Run(inputMap)
	if err != nil {
		return nil, err
	}

	converted := make(map[string]*Tensor, len(results))
	for name, t := range results {
		data, ok := t.Data().([]float32)
		if !ok {
			return nil, fmt.Errorf("output %s is not float32", name)
		}
		shape := t.Shape()
		dims := make([]int64, len(shape))
		for i, d := range shape {
			dims[i] = int64(d)
		}
		out := &Tensor{Shape: dims, Data: make([]float32, len(data))}
		copy(out.Data, data)
		converted[name] = out
	}
	return converted, nil
}

func (s *goSession) inputs() []InputOutputInfo {
	return s.inputsMeta
}

func (s *goSession) outputs() []InputOutputInfo {
	return s.outputsMeta
}

func (s *goSession) destroy() error {
	return nil
}
