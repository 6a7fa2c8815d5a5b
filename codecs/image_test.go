package codecs

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageConfig() ImageConfig {
	return ImageConfig{
		ImageSize:    4,
		GridSize:     2,
		CodebookSize: 3,
		EmbeddingDim: 2,
		Mean:         [3]float32{0, 0, 0},
		Std:          [3]float32{1, 1, 1},
	}
}

func testImageCodebook(t *testing.T) *Codebook {
	cb, err := NewCodebook(2, []float32{
		0, 0,
		1, 0,
		0, 1,
	})
	require.NoError(t, err)
	return cb
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageCodecEncode(t *testing.T) {
	cfg := testImageConfig()
	encoder := &fakeSession{
		inputInfo:  []InputOutputInfo{{Name: "pixel_values", Dimensions: []int64{1, 3, 4, 4}}},
		outputInfo: []InputOutputInfo{{Name: "latents", Dimensions: []int64{1, -1, 2}}},
		forward: func(inputs map[string]*Tensor, outputShapes map[string][]int64) (map[string]*Tensor, error) {
			pixels, ok := inputs["pixel_values"]
			require.True(t, ok)
			assert.Equal(t, []int64{1, 3, 4, 4}, pixels.Shape)
			assert.Equal(t, []int64{1, 4, 2}, outputShapes["latents"])
			return map[string]*Tensor{"latents": {
				Shape: []int64{1, 4, 2},
				Data: []float32{
					0.9, 0.1,
					0.0, 0.0,
					0.1, 0.9,
					1.0, 0.0,
				},
			}}, nil
		},
	}
	codec := newImageCodec(cfg, &modelBundle{
		encoder:  encoder,
		decoder:  &fakeSession{},
		codebook: testImageCodebook(t),
	})

	codes, err := codec.Encode(solidImage(8, 6, color.White))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2, 1}, codes)
	assert.Len(t, codes, cfg.Tokens())
}

func TestImageCodecEncodeRejectsInvalidSignal(t *testing.T) {
	codec := newImageCodec(testImageConfig(), &modelBundle{
		encoder:  &fakeSession{},
		decoder:  &fakeSession{},
		codebook: testImageCodebook(t),
	})

	var sigErr *InvalidSignalError
	_, err := codec.Encode(nil)
	require.ErrorAs(t, err, &sigErr)

	_, err = codec.Encode(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.ErrorAs(t, err, &sigErr)
}

func TestImageCodecDecode(t *testing.T) {
	cfg := testImageConfig()
	cb := testImageCodebook(t)
	decoder := &fakeSession{
		inputInfo:  []InputOutputInfo{{Name: "latents", Dimensions: []int64{1, -1, 2}}},
		outputInfo: []InputOutputInfo{{Name: "image", Dimensions: []int64{1, 3, 4, 4}}},
		forward: func(inputs map[string]*Tensor, outputShapes map[string][]int64) (map[string]*Tensor, error) {
			latents, ok := inputs["latents"]
			require.True(t, ok)
			assert.Equal(t, []int64{1, 4, 2}, latents.Shape)
			// Embeddings for codes 2, 0, 1, 2.
			assert.Equal(t, []float32{0, 1, 0, 0, 1, 0, 0, 1}, latents.Data)
			out := NewTensor(outputShapes["image"]...)
			for i := range out.Data {
				out.Data[i] = 0.5
			}
			return map[string]*Tensor{"image": out}, nil
		},
	}
	codec := newImageCodec(cfg, &modelBundle{
		encoder:  &fakeSession{},
		decoder:  decoder,
		codebook: cb,
	})

	img, err := codec.Decode([]int{2, 0, 1, 2})
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, cfg.ImageSize, bounds.Dx())
	assert.Equal(t, cfg.ImageSize, bounds.Dy())
	r, g, b, a := img.At(1, 2).RGBA()
	assert.Equal(t, uint32(128), r>>8)
	assert.Equal(t, uint32(128), g>>8)
	assert.Equal(t, uint32(128), b>>8)
	assert.Equal(t, uint32(255), a>>8)
}

func TestImageCodecDecodeLengthMismatch(t *testing.T) {
	codec := newImageCodec(testImageConfig(), &modelBundle{
		encoder:  &fakeSession{},
		decoder:  &fakeSession{},
		codebook: testImageCodebook(t),
	})

	_, err := codec.Decode([]int{0, 1})
	var lenErr *LengthMismatchError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 2, lenErr.Got)
	assert.Equal(t, 4, lenErr.Want)
}

func TestImageCodecDecodeInvalidCode(t *testing.T) {
	codec := newImageCodec(testImageConfig(), &modelBundle{
		encoder:  &fakeSession{},
		decoder:  &fakeSession{},
		codebook: testImageCodebook(t),
	})

	_, err := codec.Decode([]int{0, 1, 2, 99})
	var codeErr *InvalidCodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 99, codeErr.Code)
}

func TestImageCodecDestroy(t *testing.T) {
	encoder := &fakeSession{}
	decoder := &fakeSession{}
	codec := newImageCodec(testImageConfig(), &modelBundle{
		encoder:  encoder,
		decoder:  decoder,
		codebook: testImageCodebook(t),
	})

	require.NoError(t, codec.Destroy())
	assert.True(t, encoder.destroyed)
	assert.True(t, decoder.destroyed)
}
