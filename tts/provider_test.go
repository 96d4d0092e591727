package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForNameDispatch(t *testing.T) {
	p, err := ForName("gtts")
	require.NoError(t, err)
	assert.Equal(t, "gtts", p.Name())
}

func TestForNamePremiumRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := ForName("openai")
	require.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "test-key")
	p, err := ForName("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	t.Setenv("ELEVENLABS_API_KEY", "test-key")
	p, err = ForName("elevenlabs")
	require.NoError(t, err)
	assert.Equal(t, "elevenlabs", p.Name())
}

func TestForNameUnsupported(t *testing.T) {
	_, err := ForName("espeak")
	var unsupported *UnsupportedProviderError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "espeak", unsupported.Name)
}

func TestSplitChunks(t *testing.T) {
	chunks := splitChunks("aaaa bbbb cccc dddd", 9)
	assert.Equal(t, []string{"aaaa bbbb", "cccc dddd"}, chunks)

	assert.Empty(t, splitChunks("", 100))

	// A word longer than the cap stays intact.
	chunks = splitChunks("tiny enormousword tiny", 8)
	assert.Contains(t, chunks, "enormousword")
}
