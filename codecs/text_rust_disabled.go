//go:build NOORT && !ALL

package codecs

import "errors"

type rustTokenizer struct{}

func loadRustTokenizer(_ []byte) (*TextTokenizer, error) {
	return nil, errors.New("the rust tokenizer was excluded at build time; rebuild without the NOORT tag or with ALL")
}

func (r *rustTokenizer) encode(_ string) ([]int64, error) {
	return nil, errors.New("rust tokenizer not available in this build")
}

func (r *rustTokenizer) decode(_ []int64) (string, error) {
	return "", errors.New("rust tokenizer not available in this build")
}
