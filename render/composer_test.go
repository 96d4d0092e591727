package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiml-news-pipeline/types"
)

func testTrack() *types.NarrationTrack {
	return &types.NarrationTrack{
		Segments: []types.AudioSegment{
			{SectionIndex: 0, File: "s0.mp3", DurationSeconds: 10.5},
			{SectionIndex: 1, File: "s1.mp3", DurationSeconds: 20.25},
			{SectionIndex: 2, File: "s2.mp3", DurationSeconds: 5.25},
		},
		File:         "narration_final.mp3",
		TotalSeconds: 36.0,
	}
}

func testCaptions() []types.Caption {
	return []types.Caption{
		{Text: "hello", StartSeconds: 0, EndSeconds: 5, SectionIndex: 0},
		{Text: "world", StartSeconds: 5, EndSeconds: 10.5, SectionIndex: 0},
		{Text: "story", StartSeconds: 10.5, EndSeconds: 30.75, SectionIndex: 1},
		{Text: "bye", StartSeconds: 30.75, EndSeconds: 36, SectionIndex: 2},
	}
}

func visual(captions bool) types.VisualConfig {
	return types.VisualConfig{
		BackgroundColor: "#1a1a2e",
		TextColor:       "#ffffff",
		FontSize:        48,
		CaptionsEnabled: captions,
		Resolution:      "1920x1080",
		FrameRate:       24,
	}
}

func TestBuildScenesSpanTrackExactly(t *testing.T) {
	track := testTrack()
	scenes := BuildScenes(track, testCaptions(), visual(true))

	require.Len(t, scenes, 3)
	assert.InDelta(t, 0.0, scenes[0].StartSeconds, 1e-9)
	var total float64
	for i, s := range scenes {
		if i > 0 {
			assert.InDelta(t, scenes[i-1].EndSeconds, s.StartSeconds, 1e-9, "no gaps between scenes")
		}
		total += s.EndSeconds - s.StartSeconds
	}
	assert.Equal(t, track.TotalSeconds, total, "scene durations sum exactly to the track")
	assert.InDelta(t, track.TotalSeconds, scenes[2].EndSeconds, 1e-9)
}

func TestBuildScenesAttachCaptionsBySection(t *testing.T) {
	scenes := BuildScenes(testTrack(), testCaptions(), visual(true))

	require.Len(t, scenes[0].Captions, 2)
	require.Len(t, scenes[1].Captions, 1)
	assert.Equal(t, "story", scenes[1].Captions[0].Text)
	require.Len(t, scenes[2].Captions, 1)
}

func TestBuildScenesCaptionsDisabled(t *testing.T) {
	scenes := BuildScenes(testTrack(), testCaptions(), visual(false))
	for i, s := range scenes {
		assert.Empty(t, s.Captions, "scene %d must carry no overlay text", i)
	}
}

func TestRenderInvokesEncoderPerSceneThenMux(t *testing.T) {
	comp := NewComposer(visual(true))
	var calls [][]string
	comp.runFFmpeg = func(_ context.Context, args ...string) error {
		calls = append(calls, args)
		return nil
	}

	track := testTrack()
	scenes := BuildScenes(track, testCaptions(), visual(true))
	artifact, err := comp.Render(context.Background(), scenes, track, t.TempDir())
	require.NoError(t, err)

	// 3 scene encodes + 1 concat + 1 mux.
	assert.Len(t, calls, 5)
	assert.Equal(t, track.TotalSeconds, artifact.DurationSeconds)
	assert.Equal(t, "1920x1080", artifact.Resolution)
	assert.Contains(t, artifact.Path, "final_video.mp4")
}

func TestRenderFailureRetainsScenes(t *testing.T) {
	comp := NewComposer(visual(true))
	comp.runFFmpeg = func(_ context.Context, _ ...string) error {
		return errors.New("encoder exploded")
	}

	track := testTrack()
	scenes := BuildScenes(track, testCaptions(), visual(true))
	_, err := comp.Render(context.Background(), scenes, track, t.TempDir())

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Len(t, renderErr.Scenes, 3, "scene plan retained for retry")
}

func TestFFmpegColor(t *testing.T) {
	assert.Equal(t, "0x1a1a2e", ffmpegColor("#1a1a2e"))
	assert.Equal(t, "black", ffmpegColor("black"))
}

func TestEscapeDrawtext(t *testing.T) {
	assert.Equal(t, `it\'s 50\% done\: yes`, escapeDrawtext("it's 50% done: yes"))
}
