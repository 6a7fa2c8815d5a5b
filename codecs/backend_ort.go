//go:build !NOORT || ALL

package codecs

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/modalityml/omnitok/options"
)

type ortSession struct {
	session     *ort.DynamicAdvancedSession
	inputsMeta  []InputOutputInfo
	outputsMeta []InputOutputInfo
}

func newORTSession(onnxBytes []byte, o *options.Options) (session, error) {
	sessionOptions, ok := o.RuntimeOptions.(*ort.SessionOptions)
	if !ok {
		return nil, errors.New("ORT session options not initialised; create codecs through an ORT session")
	}

	inputs, outputs, err := loadInputOutputMetaORT(onnxBytes)
	if err != nil {
		return nil, err
	}

	dynSession, err := ort.NewDynamicAdvancedSessionWithONNXData(
		onnxBytes,
		names(inputs),
		names(outputs),
		sessionOptions,
	)
	if err != nil {
		return nil, err
	}

	return &ortSession{
		session:     dynSession,
		inputsMeta:  inputs,
		outputsMeta: outputs,
	}, nil
}

func loadInputOutputMetaORT(onnxBytes []byte) ([]InputOutputInfo, []InputOutputInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(onnxBytes)
	if err != nil {
		return nil, nil, err
	}
	return convertORTInputOutputs(inputs), convertORTInputOutputs(outputs), nil
}

func convertORTInputOutputs(inputOutputs []ort.InputOutputInfo) []InputOutputInfo {
	converted := make([]InputOutputInfo, len(inputOutputs))
	for i, inputOutput := range inputOutputs {
		converted[i] = InputOutputInfo{
			Name:       inputOutput.Name,
			Dimensions: inputOutput.Dimensions,
		}
	}
	return converted
}

func (s *ortSession) run(inputs map[string]*Tensor, outputShapes map[string][]int64) (map[string]*Tensor, error) {
	inputValues := make([]ort.Value, len(s.inputsMeta))
	defer func() {
		for _, v := range inputValues {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}()
	for i, meta := range s.inputsMeta {
		in, ok := inputs[meta.Name]
		if !ok {
			return nil, fmt.Errorf("model input %s not supplied", meta.Name)
		}
		value, err := ort.NewTensor(ort.NewShape(in.Shape...), in.Data)
		if err != nil {
			return nil, err
		}
		inputValues[i] = value
	}

	outputValues := make([]ort.Value, len(s.outputsMeta))
	defer func() {
		for _, v := range outputValues {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}()
	for i, meta := range s.outputsMeta {
		shape, err := resolveOutputShape(meta, outputShapes)
		if err != nil {
			return nil, err
		}
		value, err := ort.NewEmptyTensor[float32](ort.NewShape(shape...))
		if err != nil {
			return nil, err
		}
		outputValues[i] = value
	}

	if err := s.session.Run(inputValues, outputValues); err != nil {
		return nil, err
	}

	results := make(map[string]*Tensor, len(s.outputsMeta))
	for i, meta := range s.outputsMeta {
		tensorValue := outputValues[i].(*ort.Tensor[float32])
		data := tensorValue.GetData()
		out := &Tensor{Shape: tensorValue.GetShape(), Data: make([]float32, len(data))}
		copy(out.Data, data)
		results[meta.Name] = out
	}
	return results, nil
}

// resolveOutputShape substitutes dynamic output dimensions using the shapes
// the codec computed for this call. ORT requires preallocated outputs.
func resolveOutputShape(meta InputOutputInfo, outputShapes map[string][]int64) ([]int64, error) {
	if shape, ok := outputShapes[meta.Name]; ok {
		return shape, nil
	}
	shape := make([]int64, len(meta.Dimensions))
	for i, dim := range meta.Dimensions {
		if dim == -1 {
			return nil, fmt.Errorf("output %s has a dynamic dimension and no resolved shape was supplied", meta.Name)
		}
		shape[i] = dim
	}
	return shape, nil
}

func (s *ortSession) inputs() []InputOutputInfo {
	return s.inputsMeta
}

func (s *ortSession) outputs() []InputOutputInfo {
	return s.outputsMeta
}

func (s *ortSession) destroy() error {
	return s.session.Destroy()
}
