// Package safeconv holds checked integer conversions used where token ids
// cross library boundaries with different integer widths.
package safeconv

import "math"

// Int64SliceToUint32Slice converts global token ids to the uint32 form the
// tokenizer libraries expect, clamping to avoid overflow/underflow.
func Int64SliceToUint32Slice(input []int64) []uint32 {
	out := make([]uint32, len(input))
	for i, v := range input {
		out[i] = Int64ToUint32(v)
	}
	return out
}

// Uint32SliceToInt64Slice widens tokenizer ids to the int64 form used for
// global token sequences. Always lossless.
func Uint32SliceToInt64Slice(input []uint32) []int64 {
	out := make([]int64, len(input))
	for i, v := range input {
		out[i] = int64(v)
	}
	return out
}

// Int64SliceToIntSlice converts ids to int with clamping to MaxInt when
// necessary.
func Int64SliceToIntSlice(input []int64) []int {
	out := make([]int, len(input))
	for i, v := range input {
		if v < 0 {
			out[i] = 0
		} else if v > math.MaxInt {
			out[i] = math.MaxInt
		} else {
			out[i] = int(v)
		}
	}
	return out
}

// IntSliceToInt64Slice widens a slice of int to int64. Always lossless.
func IntSliceToInt64Slice(input []int) []int64 {
	out := make([]int64, len(input))
	for i, v := range input {
		out[i] = int64(v)
	}
	return out
}

// Int64ToUint32 converts int64 to uint32 with clamping into [0, MaxUint32].
func Int64ToUint32(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
