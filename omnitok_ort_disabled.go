//go:build NOORT && !ALL

package omnitok

import (
	"errors"

	"github.com/modalityml/omnitok/options"
)

// NewORTSession is unavailable: the onnxruntime backend was excluded at build
// time. Rebuild without the NOORT tag or with ALL.
func NewORTSession(_ ...options.WithOption) (*Session, error) {
	return nil, errors.New("the onnxruntime backend was excluded at build time; rebuild without the NOORT tag or with ALL")
}
