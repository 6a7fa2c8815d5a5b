//go:build !GO && !ALL

package omnitok

import (
	"errors"

	"github.com/modalityml/omnitok/options"
)

// NewGoSession is unavailable: the pure Go backend was excluded at build
// time. Rebuild with the GO or ALL tag.
func NewGoSession(_ ...options.WithOption) (*Session, error) {
	return nil, errors.New("the pure Go backend was excluded at build time; rebuild with the GO or ALL tag")
}
