//go:build GO || ALL

package omnitok

import (
	"github.com/modalityml/omnitok/options"
)

// NewGoSession creates a session backed by the pure Go onnx runtime. It
// requires no shared libraries but supports a smaller operator set and is
// slower than NewORTSession.
func NewGoSession(opts ...options.WithOption) (*Session, error) {
	return newSession("GO", opts...)
}
