package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := Defaults()
	require.NotNil(t, o.ORTOptions)
	assert.NotNil(t, o.ORTOptions.LibraryPath)
	assert.NoError(t, o.Destroy())
}

func TestORTOptionsRejectedOnGoBackend(t *testing.T) {
	opts := []WithOption{
		WithTelemetry(),
		WithIntraOpNumThreads(2),
		WithInterOpNumThreads(2),
		WithCPUMemArena(false),
		WithMemPattern(false),
		WithOnnxLibraryPath("/tmp/onnxruntime.so"),
	}
	for _, opt := range opts {
		o := Defaults()
		o.Backend = "GO"
		assert.Error(t, opt(o))
	}
}

func TestOptionsApply(t *testing.T) {
	o := Defaults()
	o.Backend = "ORT"

	require.NoError(t, WithIntraOpNumThreads(4)(o))
	require.NoError(t, WithInterOpNumThreads(2)(o))
	require.NoError(t, WithCPUMemArena(false)(o))
	require.NoError(t, WithMemPattern(false)(o))
	require.NoError(t, WithTelemetry()(o))

	assert.Equal(t, 4, *o.ORTOptions.IntraOpNumThreads)
	assert.Equal(t, 2, *o.ORTOptions.InterOpNumThreads)
	assert.False(t, *o.ORTOptions.CPUMemArena)
	assert.False(t, *o.ORTOptions.MemPattern)
	assert.True(t, *o.ORTOptions.Telemetry)
}

func TestWithOnnxLibraryPathMissingFile(t *testing.T) {
	o := Defaults()
	o.Backend = "ORT"
	assert.Error(t, WithOnnxLibraryPath("/definitely/not/there/onnxruntime.so")(o))
}
