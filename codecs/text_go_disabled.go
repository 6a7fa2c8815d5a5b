//go:build !GO && !ALL

package codecs

import "errors"

type goTokenizer struct{}

func loadGoTokenizer(_ []byte) (*TextTokenizer, error) {
	return nil, errors.New("the Go tokenizer was excluded at build time; rebuild with the GO or ALL tag")
}

func (g *goTokenizer) encode(_ string) ([]int64, error) {
	return nil, errors.New("go tokenizer not available in this build")
}

func (g *goTokenizer) decode(_ []int64) (string, error) {
	return "", errors.New("go tokenizer not available in this build")
}
