// Package omnitok tokenizes text, images and speech into one shared discrete
// vocabulary for an autoregressive sequence model, and detokenizes generated
// sequences back into per-modality outputs.
package omnitok

import (
	"errors"
	"fmt"

	"github.com/modalityml/omnitok/codecs"
	"github.com/modalityml/omnitok/options"
	"github.com/modalityml/omnitok/vocab"
)

// Session owns the inference backend and every codec created from it. Only
// one session can be active at a time; destroy it when done, preferably with
// a defer call.
type Session struct {
	options            *options.Options
	destroyers         []func() error
	environmentDestroy func() error
}

func newSession(backend string, opts ...options.WithOption) (*Session, error) {
	parsedOptions := options.Defaults()
	parsedOptions.Backend = backend
	for _, option := range opts {
		if err := option(parsedOptions); err != nil {
			return nil, err
		}
	}

	return &Session{
		options: parsedOptions,
		environmentDestroy: func() error {
			return nil
		},
	}, nil
}

// NewImageCodec loads an image codec bundle and tracks it on the session.
func (s *Session) NewImageCodec(modelPath string) (*codecs.ImageCodec, error) {
	codec, err := codecs.NewImageCodec(modelPath, s.options)
	if err != nil {
		return nil, err
	}
	s.destroyers = append(s.destroyers, codec.Destroy)
	return codec, nil
}

// NewSpeechCodec loads a speech codec bundle and tracks it on the session.
func (s *Session) NewSpeechCodec(modelPath string) (*codecs.SpeechCodec, error) {
	codec, err := codecs.NewSpeechCodec(modelPath, s.options)
	if err != nil {
		return nil, err
	}
	s.destroyers = append(s.destroyers, codec.Destroy)
	return codec, nil
}

// NewTextTokenizer loads a tokenizer.json and tracks it on the session.
func (s *Session) NewTextTokenizer(tokenizerPath string) (*codecs.TextTokenizer, error) {
	tokenizer, err := codecs.LoadTextTokenizer(tokenizerPath, s.options)
	if err != nil {
		return nil, err
	}
	s.destroyers = append(s.destroyers, tokenizer.Destroy)
	return tokenizer, nil
}

// TokenizerConfig describes the model bundles behind one multimodal
// tokenizer.
type TokenizerConfig struct {
	VocabConfig     vocab.Config
	TokenizerPath   string
	ImageModelPath  string
	SpeechModelPath string
	Generator       Generator
}

// NewMultimodalTokenizer loads all codecs named by the config and assembles
// them into a tokenizer. Codebook sizes are checked against the vocabulary
// layout so that every code a codec can emit has a global id.
func (s *Session) NewMultimodalTokenizer(cfg TokenizerConfig) (*MultimodalTokenizer, error) {
	table, err := vocab.NewTable(cfg.VocabConfig)
	if err != nil {
		return nil, err
	}
	text, err := s.NewTextTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}
	imageCodec, err := s.NewImageCodec(cfg.ImageModelPath)
	if err != nil {
		return nil, err
	}
	speechCodec, err := s.NewSpeechCodec(cfg.SpeechModelPath)
	if err != nil {
		return nil, err
	}

	if got, want := int64(imageCodec.Config.CodebookSize), table.CodebookSize(vocab.Image); got != want {
		return nil, fmt.Errorf("image codebook holds %d codes but the vocabulary assigns %d ids", got, want)
	}
	if got, want := int64(speechCodec.Config.CodebookSize), table.CodebookSize(vocab.Speech); got != want {
		return nil, fmt.Errorf("speech codebook holds %d codes but the vocabulary assigns %d ids", got, want)
	}

	return NewMultimodalTokenizer(text, imageCodec, speechCodec, table, cfg.Generator), nil
}

// Destroy frees every codec created from the session, the backend session
// options and the backend environment.
func (s *Session) Destroy() error {
	var err error
	for _, destroy := range s.destroyers {
		err = errors.Join(err, destroy())
	}
	s.destroyers = nil

	if s.options != nil {
		err = errors.Join(err, s.options.Destroy())
		s.options = nil
	}

	err = errors.Join(err, s.environmentDestroy())
	return err
}
