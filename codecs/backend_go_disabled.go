//go:build !GO && !ALL

package codecs

import "errors"

func newGoSession(_ []byte) (session, error) {
	return nil, errors.New("the Go backend was excluded at build time; rebuild with the GO or ALL tag")
}
