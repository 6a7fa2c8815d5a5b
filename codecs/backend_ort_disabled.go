//go:build NOORT && !ALL

package codecs

import (
	"errors"

	"github.com/modalityml/omnitok/options"
)

func newORTSession(_ []byte, _ *options.Options) (session, error) {
	return nil, errors.New("the ORT backend was excluded at build time; rebuild without the NOORT tag or with ALL")
}
