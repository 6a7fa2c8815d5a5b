package codecs

// fakeSession stands in for a loaded onnx graph so codec logic can be tested
// without an inference backend.
type fakeSession struct {
	inputInfo  []InputOutputInfo
	outputInfo []InputOutputInfo
	forward    func(inputs map[string]*Tensor, outputShapes map[string][]int64) (map[string]*Tensor, error)
	destroyed  bool
}

func (f *fakeSession) run(inputs map[string]*Tensor, outputShapes map[string][]int64) (map[string]*Tensor, error) {
	return f.forward(inputs, outputShapes)
}

func (f *fakeSession) inputs() []InputOutputInfo {
	return f.inputInfo
}

func (f *fakeSession) outputs() []InputOutputInfo {
	return f.outputInfo
}

func (f *fakeSession) destroy() error {
	f.destroyed = true
	return nil
}
