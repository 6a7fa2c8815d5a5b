package omnitok

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/modalityml/omnitok/prompt"
	"github.com/modalityml/omnitok/vocab"
)

// TextCodec converts between text and global ids.
type TextCodec interface {
	Encode(text string) ([]int64, error)
	Decode(ids []int64) (string, error)
}

// ImageCodec converts between images and modality-local codes.
type ImageCodec interface {
	Encode(img image.Image) ([]int, error)
	Decode(codes []int) (image.Image, error)
}

// SpeechCodec converts between waveforms and modality-local codes.
type SpeechCodec interface {
	Encode(samples []float32) ([]int, error)
	Decode(codes []int) ([]float32, error)
}

// MultimodalTokenizer binds the per-modality codecs, the shared vocabulary
// and an optional generator into one encode/decode surface. It holds no
// mutable state and is safe for concurrent use.
type MultimodalTokenizer struct {
	text      TextCodec
	image     ImageCodec
	speech    SpeechCodec
	table     *vocab.Table
	renderer  *prompt.Renderer
	generator Generator
}

// NewMultimodalTokenizer assembles a tokenizer from already-loaded codecs.
// The generator may be nil, in which case only Encode and Decode work.
func NewMultimodalTokenizer(text TextCodec, imageCodec ImageCodec, speechCodec SpeechCodec, table *vocab.Table, generator Generator) *MultimodalTokenizer {
	return &MultimodalTokenizer{
		text:      text,
		image:     imageCodec,
		speech:    speechCodec,
		table:     table,
		renderer: &prompt.Renderer{
			Text:   text,
			Image:  imageCodec,
			Speech: speechCodec,
			Vocab:  table,
		},
		generator: generator,
	}
}

// Encode validates the conversation and serializes it into one flat
// global-id sequence under the conversation's mode.
func (m *MultimodalTokenizer) Encode(conv prompt.Conversation) ([]int64, error) {
	return m.renderer.Render(conv)
}

// Decode splits a generated id sequence into segments and detokenizes each
// one. When the sequence ends inside an open modality segment, the segments
// completed before the truncation point are returned together with a
// TruncatedSegmentError; the truncated segment is never decoded.
func (m *MultimodalTokenizer) Decode(ids []int64) ([]prompt.Segment, error) {
	runs, splitErr := prompt.Split(ids, m.table)
	if splitErr != nil {
		var truncErr *prompt.TruncatedSegmentError
		if !errors.As(splitErr, &truncErr) {
			return nil, splitErr
		}
	}

	segments := make([]prompt.Segment, 0, len(runs))
	for _, run := range runs {
		if run.IsText {
			text, err := m.text.Decode(run.TextIDs)
			if err != nil {
				return nil, err
			}
			segments = append(segments, prompt.Text(text))
			continue
		}
		switch run.Modality {
		case vocab.Image:
			img, err := m.image.Decode(run.Codes)
			if err != nil {
				return nil, err
			}
			segments = append(segments, prompt.Image(img))
		case vocab.Speech:
			samples, err := m.speech.Decode(run.Codes)
			if err != nil {
				return nil, err
			}
			segments = append(segments, prompt.Speech(samples))
		}
	}
	return segments, splitErr
}

// Generate encodes the conversation, runs the generator and decodes the
// result. A context deadline hit during generation surfaces as
// GenerationTimeoutError with nothing detokenized.
func (m *MultimodalTokenizer) Generate(ctx context.Context, conv prompt.Conversation, cfg GenerationConfig) ([]prompt.Segment, error) {
	if m.generator == nil {
		return nil, errors.New("no generator configured")
	}
	ids, err := m.Encode(conv)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	generated, err := m.generator.Generate(ctx, ids, cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &GenerationTimeoutError{Elapsed: time.Since(start)}
		}
		return nil, err
	}
	return m.Decode(generated)
}
