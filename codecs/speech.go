package codecs

import (
	"fmt"
	"math/rand"

	"github.com/modalityml/omnitok/options"
)

// SpeechConfig fixes the acoustic codec's rates and codebook geometry. It is
// read from the model bundle's config.json.
type SpeechConfig struct {
	SampleRate   int  `json:"sample_rate"`
	FrameRate    int  `json:"frame_rate"`
	CodebookSize int  `json:"codebook_size"`
	EmbeddingDim int  `json:"embedding_dim"`
	// DeterministicDecode controls whether the vocoder's noise input is
	// zeroed. When false, Decode samples fresh gaussian noise per call and
	// reconstructions differ between runs.
	DeterministicDecode bool `json:"deterministic_decode"`
}

func (c SpeechConfig) validate() error {
	if c.SampleRate <= 0 || c.FrameRate <= 0 {
		return fmt.Errorf("speech codec config requires positive sample_rate and frame_rate")
	}
	if c.SampleRate%c.FrameRate != 0 {
		return fmt.Errorf("sample_rate %d is not divisible by frame_rate %d", c.SampleRate, c.FrameRate)
	}
	if c.CodebookSize <= 0 || c.EmbeddingDim <= 0 {
		return fmt.Errorf("speech codec config requires positive codebook_size and embedding_dim")
	}
	return nil
}

// Hop returns the number of waveform samples per code.
func (c SpeechConfig) Hop() int {
	return c.SampleRate / c.FrameRate
}

// Frames returns the code sequence length for a waveform of the given sample
// count: ceil(samples / hop).
func (c SpeechConfig) Frames(samples int) int {
	hop := c.Hop()
	return (samples + hop - 1) / hop
}

// SpeechCodec quantizes a mono waveform into an ordered code sequence at a
// fixed frame rate and inverts code sequences back into waveforms through a
// vocoder.
type SpeechCodec struct {
	Config SpeechConfig

	bundle       *modelBundle
	encoderInput string
	decoderInput string
	noiseInput   string
}

// NewSpeechCodec loads the speech codec from a model bundle directory.
func NewSpeechCodec(modelPath string, o *options.Options) (*SpeechCodec, error) {
	var cfg SpeechConfig
	if err := readCodecConfig(modelPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	bundle, err := loadBundle(modelPath, o)
	if err != nil {
		return nil, err
	}
	if got := bundle.codebook.Size(); got != cfg.CodebookSize {
		destroyErr := bundle.destroy()
		if destroyErr != nil {
			return nil, destroyErr
		}
		return nil, fmt.Errorf("codebook holds %d vectors but config declares %d", got, cfg.CodebookSize)
	}

	return newSpeechCodec(cfg, bundle), nil
}

func newSpeechCodec(cfg SpeechConfig, bundle *modelBundle) *SpeechCodec {
	return &SpeechCodec{
		Config:       cfg,
		bundle:       bundle,
		encoderInput: "waveform",
		decoderInput: "latents",
		noiseInput:   "noise",
	}
}

// Encode quantizes a mono float32 waveform into one code per frame. The tail
// frame is zero-padded to a full hop.
func (c *SpeechCodec) Encode(samples []float32) ([]int, error) {
	if len(samples) == 0 {
		return nil, &InvalidSignalError{Reason: "empty waveform"}
	}

	hop := c.Config.Hop()
	frames := c.Config.Frames(len(samples))
	padded := make([]float32, frames*hop)
	copy(padded, samples)

	outName, err := firstOutputName(c.bundle.encoder)
	if err != nil {
		return nil, err
	}
	dim := int64(c.Config.EmbeddingDim)
	waveform := &Tensor{Shape: []int64{1, int64(len(padded))}, Data: padded}
	results, err := c.bundle.encoder.run(
		map[string]*Tensor{c.encoderInput: waveform},
		map[string][]int64{outName: {1, int64(frames), dim}},
	)
	if err != nil {
		return nil, fmt.Errorf("speech encoder forward: %w", err)
	}
	latents, ok := results[outName]
	if !ok {
		return nil, fmt.Errorf("speech encoder produced no %s output", outName)
	}
	if int64(len(latents.Data)) != int64(frames)*dim {
		return nil, fmt.Errorf("speech encoder produced %d values, want %d", len(latents.Data), int64(frames)*dim)
	}

	return c.bundle.codebook.Quantize(latents.Data)
}

// Decode reconstructs a waveform of len(codes)*Hop() samples from a code
// sequence. With DeterministicDecode unset the vocoder noise input is drawn
// fresh per call, so repeated decodes of the same codes differ.
func (c *SpeechCodec) Decode(codes []int) ([]float32, error) {
	if len(codes) == 0 {
		return nil, &LengthMismatchError{Got: 0, Want: 1}
	}
	latentData, err := c.bundle.codebook.Lookup(codes)
	if err != nil {
		return nil, err
	}

	frames := len(codes)
	sampleCount := frames * c.Config.Hop()
	outName, err := firstOutputName(c.bundle.decoder)
	if err != nil {
		return nil, err
	}

	inputs := map[string]*Tensor{
		c.decoderInput: {
			Shape: []int64{1, int64(frames), int64(c.Config.EmbeddingDim)},
			Data:  latentData,
		},
	}
	if hasInput(c.bundle.decoder.inputs(), c.noiseInput) {
		inputs[c.noiseInput] = c.noiseTensor(sampleCount)
	}

	results, err := c.bundle.decoder.run(
		inputs,
		map[string][]int64{outName: {1, int64(sampleCount)}},
	)
	if err != nil {
		return nil, fmt.Errorf("speech decoder forward: %w", err)
	}
	waveform, ok := results[outName]
	if !ok {
		return nil, fmt.Errorf("speech decoder produced no %s output", outName)
	}
	if len(waveform.Data) != sampleCount {
		return nil, fmt.Errorf("speech decoder produced %d samples, want %d", len(waveform.Data), sampleCount)
	}
	return waveform.Data, nil
}

// Destroy releases the codec's inference sessions.
func (c *SpeechCodec) Destroy() error {
	return c.bundle.destroy()
}

func (c *SpeechCodec) noiseTensor(sampleCount int) *Tensor {
	noise := NewTensor(1, int64(sampleCount))
	if !c.Config.DeterministicDecode {
		for i := range noise.Data {
			noise.Data[i] = float32(rand.NormFloat64())
		}
	}
	return noise
}
