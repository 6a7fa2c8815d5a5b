//go:build GO || ALL

package codecs

import (
	"bytes"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/modalityml/omnitok/util/safeconv"
)

type goTokenizer struct {
	tk *tokenizer.Tokenizer
}

func loadGoTokenizer(tokenizerBytes []byte) (*TextTokenizer, error) {
	tk, err := pretrained.FromReader(bytes.NewReader(tokenizerBytes))
	if err != nil {
		return nil, err
	}
	return &TextTokenizer{
		Runtime: "GO",
		goTok:   &goTokenizer{tk: tk},
		Destroy: func() error {
			return nil
		},
	}, nil
}

func (g *goTokenizer) encode(text string) ([]int64, error) {
	output, err := g.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, err
	}
	return safeconv.IntSliceToInt64Slice(output.Ids), nil
}

func (g *goTokenizer) decode(ids []int64) (string, error) {
	return g.tk.Decode(safeconv.Int64SliceToIntSlice(ids), false), nil
}
