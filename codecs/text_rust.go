//go:build !NOORT || ALL

package codecs

import (
	"github.com/daulet/tokenizers"

	"github.com/modalityml/omnitok/util/safeconv"
)

type rustTokenizer struct {
	tk *tokenizers.Tokenizer
}

func loadRustTokenizer(tokenizerBytes []byte) (*TextTokenizer, error) {
	tk, err := tokenizers.FromBytes(tokenizerBytes)
	if err != nil {
		return nil, err
	}
	return &TextTokenizer{
		Runtime: "RUST",
		rust:    &rustTokenizer{tk: tk},
		Destroy: func() error {
			return tk.Close()
		},
	}, nil
}

func (r *rustTokenizer) encode(text string) ([]int64, error) {
	output := r.tk.EncodeWithOptions(text, false)
	return safeconv.Uint32SliceToInt64Slice(output.IDs), nil
}

func (r *rustTokenizer) decode(ids []int64) (string, error) {
	return r.tk.Decode(safeconv.Int64SliceToUint32Slice(ids), false), nil
}
