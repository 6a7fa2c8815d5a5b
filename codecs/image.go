package codecs

import (
	"fmt"
	"image"

	"github.com/modalityml/omnitok/options"
	"github.com/modalityml/omnitok/util/imageutil"
)

// ImageConfig fixes the geometry and normalization of one image codec. It is
// read from the model bundle's config.json and is load-bearing for
// interoperability with the pretrained sequence model.
type ImageConfig struct {
	ImageSize    int        `json:"image_size"`
	GridSize     int        `json:"grid_size"`
	CodebookSize int        `json:"codebook_size"`
	EmbeddingDim int        `json:"embedding_dim"`
	Mean         [3]float32 `json:"mean"`
	Std          [3]float32 `json:"std"`
}

func (c ImageConfig) validate() error {
	if c.ImageSize <= 0 || c.GridSize <= 0 {
		return fmt.Errorf("image codec config requires positive image_size and grid_size")
	}
	if c.CodebookSize <= 0 || c.EmbeddingDim <= 0 {
		return fmt.Errorf("image codec config requires positive codebook_size and embedding_dim")
	}
	for i := 0; i < 3; i++ {
		if c.Std[i] == 0 {
			return fmt.Errorf("image codec config std[%d] must be non-zero", i)
		}
	}
	return nil
}

// Tokens returns the code sequence length this codec produces per image.
func (c ImageConfig) Tokens() int {
	return c.GridSize * c.GridSize
}

// ImageCodec quantizes an image into an ordered code sequence and inverts
// code sequences back into images. Encode is deterministic for a fixed model
// and input.
type ImageCodec struct {
	Config ImageConfig

	bundle          *modelBundle
	preprocessSteps []imageutil.PreprocessStep
	encoderInput    string
	decoderInput    string
}

// NewImageCodec loads the image codec from a model bundle directory.
func NewImageCodec(modelPath string, o *options.Options) (*ImageCodec, error) {
	var cfg ImageConfig
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

	return newImageCodec(cfg, bundle), nil
}

func newImageCodec(cfg ImageConfig, bundle *modelBundle) *ImageCodec {
	return &ImageCodec{
		Config: cfg,
		bundle: bundle,
		preprocessSteps: []imageutil.PreprocessStep{
			imageutil.ResizeStep(cfg.ImageSize),
			imageutil.CenterCropStep(cfg.ImageSize, cfg.ImageSize),
		},
		encoderInput: "pixel_values",
		decoderInput: "latents",
	}
}

// Encode quantizes an image into Tokens() codebook indices.
func (c *ImageCodec) Encode(img image.Image) ([]int, error) {
	if img == nil {
		return nil, &InvalidSignalError{Reason: "nil image"}
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, &InvalidSignalError{Reason: "zero-area image"}
	}

	pixels, err := c.preprocess(img)
	if err != nil {
		return nil, err
	}

	outName, err := firstOutputName(c.bundle.encoder)
	if err != nil {
		return nil, err
	}
	n := int64(c.Config.Tokens())
	dim := int64(c.Config.EmbeddingDim)
	results, err := c.bundle.encoder.run(
		map[string]*Tensor{c.encoderInput: pixels},
		map[string][]int64{outName: {1, n, dim}},
	)
	if err != nil {
		return nil, fmt.Errorf("image encoder forward: %w", err)
	}
	latents, ok := results[outName]
	if !ok {
		return nil, fmt.Errorf("image encoder produced no %s output", outName)
	}
	if int64(len(latents.Data)) != n*dim {
		return nil, fmt.Errorf("image encoder produced %d values, want %d", len(latents.Data), n*dim)
	}

	return c.bundle.codebook.Quantize(latents.Data)
}

// Decode reconstructs an image from a code sequence. The sequence length
// must equal Tokens() and every code must be a valid codebook index.
func (c *ImageCodec) Decode(codes []int) (image.Image, error) {
	want := c.Config.Tokens()
	if len(codes) != want {
		return nil, &LengthMismatchError{Got: len(codes), Want: want}
	}
	latentData, err := c.bundle.codebook.Lookup(codes)
	if err != nil {
		return nil, err
	}

	outName, err := firstOutputName(c.bundle.decoder)
	if err != nil {
		return nil, err
	}
	size := int64(c.Config.ImageSize)
	latents := &Tensor{
		Shape: []int64{1, int64(want), int64(c.Config.EmbeddingDim)},
		Data:  latentData,
	}
	results, err := c.bundle.decoder.run(
		map[string]*Tensor{c.decoderInput: latents},
		map[string][]int64{outName: {1, 3, size, size}},
	)
	if err != nil {
		return nil, fmt.Errorf("image decoder forward: %w", err)
	}
	pixels, ok := results[outName]
	if !ok {
		return nil, fmt.Errorf("image decoder produced no %s output", outName)
	}
	if int64(len(pixels.Data)) != 3*size*size {
		return nil, fmt.Errorf("image decoder produced %d values, want %d", len(pixels.Data), 3*size*size)
	}

	return c.postprocess(pixels), nil
}

// Destroy releases the codec's inference sessions.
func (c *ImageCodec) Destroy() error {
	return c.bundle.destroy()
}

// preprocess resizes, crops, rescales and normalizes an image into a
// [1, 3, S, S] tensor.
func (c *ImageCodec) preprocess(img image.Image) (*Tensor, error) {
	var err error
	for _, step := range c.preprocessSteps {
		img, err = step.Apply(img)
		if err != nil {
			return nil, err
		}
	}

	size := c.Config.ImageSize
	rescale := imageutil.RescaleStep()
	normalize := imageutil.PixelNormalizationStep(c.Config.Mean, c.Config.Std)

	out := NewTensor(1, 3, int64(size), int64(size))
	plane := size * size
	bounds := img.Bounds()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r, g, b := float32(r16>>8), float32(g16>>8), float32(b16>>8)
			r, g, b = rescale.Apply(r, g, b)
			r, g, b = normalize.Apply(r, g, b)
			idx := y*size + x
			out.Data[idx] = r
			out.Data[plane+idx] = g
			out.Data[2*plane+idx] = b
		}
	}
	return out, nil
}

// postprocess denormalizes a [1, 3, S, S] tensor back into an RGBA image.
func (c *ImageCodec) postprocess(pixels *Tensor) image.Image {
	size := c.Config.ImageSize
	normalize := imageutil.PixelNormalizationStep(c.Config.Mean, c.Config.Std)
	plane := size * size

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := y*size + x
			for ch := 0; ch < 3; ch++ {
				v := normalize.Denormalize(pixels.Data[ch*plane+idx], ch) * 255
				img.Pix[(y*size+x)*4+ch] = clampByte(v)
			}
			img.Pix[(y*size+x)*4+3] = 255
		}
	}
	return img
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
