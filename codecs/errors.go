package codecs

import "fmt"

// InvalidSignalError reports a malformed raw signal rejected at the codec
// boundary: wrong channel count, zero length, corrupt header.
type InvalidSignalError struct {
	Reason string
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal: %s", e.Reason)
}

// InvalidCodeError reports a code index outside the codebook's index range.
type InvalidCodeError struct {
	Code  int
	Index int
	Size  int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("code %d at position %d outside codebook of size %d", e.Code, e.Index, e.Size)
}

// LengthMismatchError reports a code sequence whose length corresponds to no
// valid output grid or frame count.
type LengthMismatchError struct {
	Got  int
	Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("code sequence length %d does not match expected length %d", e.Got, e.Want)
}
