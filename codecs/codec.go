// Package codecs implements the modality codecs that quantize continuous
// signals into codebook indices and reconstruct signals from them, plus the
// text tokenizer they share a prompt with. Model bundles are loaded once and
// are read-only afterwards, so one codec safely serves concurrent requests.
package codecs

import (
	"errors"
	"fmt"

	"github.com/modalityml/omnitok/options"
	"github.com/modalityml/omnitok/util"
)

// Bundle file layout inside a model directory.
const (
	encoderFilename  = "encoder.onnx"
	decoderFilename  = "decoder.onnx"
	codebookFilename = "codebook.json"
	configFilename   = "config.json"
)

// modelBundle holds the loaded encoder/decoder graphs and the codebook of
// one codec.
type modelBundle struct {
	path     string
	encoder  session
	decoder  session
	codebook *Codebook
}

func loadBundle(modelPath string, o *options.Options) (*modelBundle, error) {
	encBytes, err := util.ReadFileBytes(util.PathJoinSafe(modelPath, encoderFilename))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", encoderFilename, err)
	}
	decBytes, err := util.ReadFileBytes(util.PathJoinSafe(modelPath, decoderFilename))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", decoderFilename, err)
	}
	cbBytes, err := util.ReadFileBytes(util.PathJoinSafe(modelPath, codebookFilename))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", codebookFilename, err)
	}
	codebook, err := LoadCodebook(cbBytes)
	if err != nil {
		return nil, err
	}

	encoder, err := newSession(encBytes, o)
	if err != nil {
		return nil, fmt.Errorf("loading encoder session: %w", err)
	}
	decoder, err := newSession(decBytes, o)
	if err != nil {
		destroyErr := encoder.destroy()
		return nil, errors.Join(fmt.Errorf("loading decoder session: %w", err), destroyErr)
	}

	return &modelBundle{
		path:     modelPath,
		encoder:  encoder,
		decoder:  decoder,
		codebook: codebook,
	}, nil
}

func readCodecConfig(modelPath string, out any) error {
	cfgBytes, err := util.ReadFileBytes(util.PathJoinSafe(modelPath, configFilename))
	if err != nil {
		return fmt.Errorf("reading %s: %w", configFilename, err)
	}
	return parseJSON(cfgBytes, out)
}

func (b *modelBundle) destroy() error {
	return errors.Join(b.encoder.destroy(), b.decoder.destroy())
}

// firstOutputName returns the name of a session's first declared output; the
// codec graphs have exactly one.
func firstOutputName(s session) (string, error) {
	outs := s.outputs()
	if len(outs) == 0 {
		return "", fmt.Errorf("model declares no outputs")
	}
	return outs[0].Name, nil
}
