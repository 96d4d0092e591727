package captions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiml-news-pipeline/types"
)

func section(text string, seconds float64) types.ScriptSection {
	return types.ScriptSection{Kind: types.SectionArticle, Narration: text, EstimatedSeconds: seconds}
}

func TestBuildEmptyNarration(t *testing.T) {
	assert.Empty(t, Build(section("", 10), 0, 0, 80))
	assert.Empty(t, Build(section("   \n ", 10), 0, 0, 80))
}

func TestBuildRespectsMaxChars(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("seven77 ", 40)) // 40 words, 7 chars each
	caps := Build(section(text, 20), 0, 0, 30)

	require.NotEmpty(t, caps)
	for _, c := range caps {
		assert.LessOrEqual(t, len(c.Text), 30)
		assert.NotContains(t, c.Text, "  ")
	}
}

func TestBuildNeverSplitsWords(t *testing.T) {
	text := "short supercalifragilisticexpialidocious word"
	caps := Build(section(text, 6), 0, 0, 10)

	var words []string
	for _, c := range caps {
		words = append(words, strings.Fields(c.Text)...)
	}
	assert.Equal(t, strings.Fields(text), words)
	// The oversized word is its own caption, intact.
	found := false
	for _, c := range caps {
		if c.Text == "supercalifragilisticexpialidocious" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildRoundTrip(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the riverbank every single morning without fail"
	caps := Build(section(text, 12), 3, 0, 25)

	var parts []string
	for _, c := range caps {
		parts = append(parts, c.Text)
		assert.Equal(t, 3, c.SectionIndex)
	}
	assert.Equal(t, text, strings.Join(parts, " "))
}

func TestBuildTimestamps(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 30))
	const start, dur = 42.5, 18.0
	caps := Build(section(text, dur), 1, start, 20)

	require.NotEmpty(t, caps)
	assert.InDelta(t, start, caps[0].StartSeconds, 1e-9)
	for i, c := range caps {
		assert.LessOrEqual(t, c.StartSeconds, c.EndSeconds, "caption %d", i)
		if i > 0 {
			assert.InDelta(t, caps[i-1].EndSeconds, c.StartSeconds, 1e-9,
				"captions must not overlap or leave gaps")
		}
	}
	last := caps[len(caps)-1]
	assert.Equal(t, start+dur, last.EndSeconds, "last caption ends exactly at the section boundary")
}

func TestForScriptOffsets(t *testing.T) {
	sc := &types.Script{Sections: []types.ScriptSection{
		section("intro words here", 10),
		section("", 0),
		section("story words in the middle", 20),
	}}
	caps := ForScript(sc, 80)

	require.Len(t, caps, 2)
	assert.Equal(t, 0, caps[0].SectionIndex)
	assert.InDelta(t, 0.0, caps[0].StartSeconds, 1e-9)
	assert.Equal(t, 2, caps[1].SectionIndex)
	assert.InDelta(t, 10.0, caps[1].StartSeconds, 1e-9, "empty section shifts nothing extra")
}

func TestForTrackUsesMeasuredDurations(t *testing.T) {
	sc := &types.Script{Sections: []types.ScriptSection{
		section("first section text", 10),
		section("second section text", 10),
	}}
	track := &types.NarrationTrack{
		Segments: []types.AudioSegment{
			{SectionIndex: 0, DurationSeconds: 7.5},
			{SectionIndex: 1, DurationSeconds: 12.0},
		},
		TotalSeconds: 19.5,
	}

	caps := ForTrack(sc, track, 80)
	require.Len(t, caps, 2)
	assert.InDelta(t, 7.5, caps[0].EndSeconds, 1e-9, "measured duration supersedes the estimate")
	assert.InDelta(t, 7.5, caps[1].StartSeconds, 1e-9)
	assert.InDelta(t, 19.5, caps[1].EndSeconds, 1e-9)
}
