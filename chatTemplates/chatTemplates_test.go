package chatTemplates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardHeader(t *testing.T) {
	chrome := Standard()
	header, err := chrome.RenderHeader("User")
	require.NoError(t, err)
	assert.Equal(t, "<|im_start|>user\n", header)
	assert.Empty(t, chrome.Preamble)
}

func TestVoiceHeader(t *testing.T) {
	chrome := Voice()
	header, err := chrome.RenderHeader(" assistant ")
	require.NoError(t, err)
	assert.Equal(t, "[assistant]: ", header)
	assert.NotEmpty(t, chrome.Preamble)
	assert.Equal(t, " <eot>\n", chrome.Footer)
}
