// Package frames selects representative still frames from a video's frame
// stream, so a video can enter a conversation as a handful of image segments.
package frames

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/modalityml/omnitok/util/imageutil"
)

// Mode selects the frame sampling strategy.
type Mode int

const (
	// Uniform samples TargetFrameCount frames evenly across the stream.
	Uniform Mode = iota
	// Keyframe keeps the first frame of each detected scene and falls back
	// to uniform sampling when the stream has no cuts.
	Keyframe
)

const (
	defaultTargetFrameCount = 10
	// Mean absolute luma difference (0..255) above which two consecutive
	// frames are treated as a cut.
	defaultCutThreshold = 27.0

	thumbSize = 32
)

// Config controls frame selection. Zero values take the defaults above.
type Config struct {
	Mode             Mode
	TargetFrameCount int
	CutThreshold     float64
}

func (c Config) withDefaults() Config {
	if c.TargetFrameCount <= 0 {
		c.TargetFrameCount = defaultTargetFrameCount
	}
	if c.CutThreshold <= 0 {
		c.CutThreshold = defaultCutThreshold
	}
	return c
}

// Source yields frames in order and returns io.EOF when exhausted.
type Source interface {
	Next() (image.Image, error)
}

type sliceSource struct {
	frames []image.Image
	pos    int
}

// FromSlice wraps already-decoded frames as a Source.
func FromSlice(frames []image.Image) Source {
	return &sliceSource{frames: frames}
}

func (s *sliceSource) Next() (image.Image, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	img := s.frames[s.pos]
	s.pos++
	return img, nil
}

// Extract drains the source and returns the selected frames in stream order.
func Extract(src Source, cfg Config) ([]image.Image, error) {
	cfg = cfg.withDefaults()

	var all []image.Image
	for {
		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, img)
	}
	if len(all) == 0 {
		return nil, errors.New("frame source yielded no frames")
	}

	switch cfg.Mode {
	case Uniform:
		return sampleUniform(all, cfg.TargetFrameCount), nil
	case Keyframe:
		keyframes, err := sampleKeyframes(all, cfg.CutThreshold)
		if err != nil {
			return nil, err
		}
		// A single keyframe means no cuts were found.
		if len(keyframes) <= 1 {
			return sampleUniform(all, cfg.TargetFrameCount), nil
		}
		return keyframes, nil
	default:
		return nil, fmt.Errorf("frame sampling mode %d is not supported", cfg.Mode)
	}
}

func sampleUniform(all []image.Image, count int) []image.Image {
	if count >= len(all) {
		return all
	}
	out := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, all[i*len(all)/count])
	}
	return out
}

func sampleKeyframes(all []image.Image, threshold float64) ([]image.Image, error) {
	out := []image.Image{all[0]}
	prev, err := thumbnailLuma(all[0])
	if err != nil {
		return nil, err
	}
	for _, img := range all[1:] {
		cur, thumbErr := thumbnailLuma(img)
		if thumbErr != nil {
			return nil, thumbErr
		}
		if meanAbsDiff(prev, cur) > threshold {
			out = append(out, img)
		}
		prev = cur
	}
	return out, nil
}

// thumbnailLuma reduces a frame to a small grayscale plane for comparison.
func thumbnailLuma(img image.Image) ([]float64, error) {
	resized, err := imageutil.ResizeStep(thumbSize).Apply(img)
	if err != nil {
		return nil, err
	}
	cropped, err := imageutil.CenterCropStep(thumbSize, thumbSize).Apply(resized)
	if err != nil {
		return nil, err
	}

	luma := make([]float64, 0, thumbSize*thumbSize)
	bounds := cropped.Bounds()
	for y := bounds.Min.Y; y < bounds.Min.Y+thumbSize; y++ {
		for x := bounds.Min.X; x < bounds.Min.X+thumbSize; x++ {
			r, g, b, _ := cropped.At(x, y).RGBA()
			luma = append(luma, 0.299*float64(r>>8)+0.587*float64(g>>8)+0.114*float64(b>>8))
		}
	}
	return luma, nil
}

func meanAbsDiff(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(a))
}
