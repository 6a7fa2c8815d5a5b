package codecs

import (
	"fmt"

	"github.com/modalityml/omnitok/options"
	"github.com/modalityml/omnitok/util"
)

// TextTokenizer wraps the pretrained model's text tokenizer. The rust
// implementation is used with the ORT backend and the pure Go implementation
// with the Go backend, mirroring the inference backend split.
type TextTokenizer struct {
	Runtime string
	rust    *rustTokenizer
	goTok   *goTokenizer
	Destroy func() error
}

// LoadTextTokenizer reads a huggingface tokenizer.json and builds the
// tokenizer matching the session backend.
func LoadTextTokenizer(path string, o *options.Options) (*TextTokenizer, error) {
	tokenizerBytes, err := util.ReadFileBytes(path)
	if err != nil {
		return nil, err
	}

	switch o.Backend {
	case "ORT":
		return loadRustTokenizer(tokenizerBytes)
	case "GO":
		return loadGoTokenizer(tokenizerBytes)
	default:
		return nil, fmt.Errorf("backend %q not recognized", o.Backend)
	}
}

// Encode tokenizes text into global ids without adding the tokenizer's own
// special tokens; the chat template supplies all framing.
func (t *TextTokenizer) Encode(text string) ([]int64, error) {
	switch t.Runtime {
	case "RUST":
		return t.rust.encode(text)
	case "GO":
		return t.goTok.encode(text)
	default:
		return nil, fmt.Errorf("tokenizer runtime %q not recognized", t.Runtime)
	}
}

// Decode detokenizes text-vocabulary ids back into a string.
func (t *TextTokenizer) Decode(ids []int64) (string, error) {
	switch t.Runtime {
	case "RUST":
		return t.rust.decode(ids)
	case "GO":
		return t.goTok.decode(ids)
	default:
		return "", fmt.Errorf("tokenizer runtime %q not recognized", t.Runtime)
	}
}
