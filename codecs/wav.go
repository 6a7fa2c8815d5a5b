package codecs

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// ReadWAV decodes a mono WAV stream into float32 PCM in [-1, 1] and returns
// its sample rate. Malformed containers and multi-channel audio are rejected
// with InvalidSignalError; resampling is never attempted here.
func ReadWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, &InvalidSignalError{Reason: "not a valid WAV file"}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, &InvalidSignalError{Reason: "reading PCM data: " + err.Error()}
	}
	if buf.Format == nil || buf.Format.NumChannels != 1 {
		return nil, 0, &InvalidSignalError{Reason: "expected mono audio"}
	}
	if len(buf.Data) == 0 {
		return nil, 0, &InvalidSignalError{Reason: "empty waveform"}
	}

	scale := float32(math.Pow(2, float64(buf.SourceBitDepth-1)))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, buf.Format.SampleRate, nil
}

// WriteWAV encodes float32 PCM as a 16-bit mono WAV stream.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))
		data[i] = int(clamped * (math.MaxInt16))
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
