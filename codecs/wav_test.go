package codecs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := []float32{0, 0.25, 0.5, -0.5, -0.25, 1, -1, 0.125}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, in, 16000))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, rate, err := ReadWAV(f)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1.0/float64(1<<14), "sample %d", i)
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	_, _, err := ReadWAV(strings.NewReader("definitely not a RIFF container"))
	var sigErr *InvalidSignalError
	require.ErrorAs(t, err, &sigErr)
}
