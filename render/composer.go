// Package render builds the visual scene sequence for a narration track and
// renders it into the final video with ffmpeg. Scene planning is pure; only
// Render touches the encoder.
package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"aiml-news-pipeline/types"
)

// RenderError reports an encoding failure. The planned scene sequence is
// retained so the operator can retry without recomputing captions or audio.
type RenderError struct {
	Scenes []types.Scene
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed after planning %d scenes: %v", len(e.Scenes), e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// BuildScenes plans one scene per track segment, spanning exactly the
// segment's slice of the track. With captions enabled each scene carries the
// captions belonging to its section; disabled, scenes carry no overlay text
// at all.
func BuildScenes(track *types.NarrationTrack, captions []types.Caption, visual types.VisualConfig) []types.Scene {
	scenes := make([]types.Scene, 0, len(track.Segments))
	var offset float64
	for _, seg := range track.Segments {
		scene := types.Scene{
			SectionIndex:    seg.SectionIndex,
			StartSeconds:    offset,
			EndSeconds:      offset + seg.DurationSeconds,
			BackgroundColor: visual.BackgroundColor,
		}
		if visual.CaptionsEnabled {
			for _, c := range captions {
				if c.SectionIndex == seg.SectionIndex {
					scene.Captions = append(scene.Captions, c)
				}
			}
		}
		scenes = append(scenes, scene)
		offset = scene.EndSeconds
	}
	return scenes
}

// Composer renders planned scenes into the final artifact.
type Composer struct {
	visual types.VisualConfig

	// Replaceable for tests.
	runFFmpeg func(ctx context.Context, args ...string) error
}

// NewComposer creates a Composer for the given visual configuration.
func NewComposer(visual types.VisualConfig) *Composer {
	return &Composer{visual: visual, runFFmpeg: runFFmpeg}
}

// Render encodes one clip per scene (background color plus timed caption
// overlays), concatenates them, and muxes in the narration track. Any encoder
// failure surfaces as a RenderError carrying the scene sequence.
func (c *Composer) Render(ctx context.Context, scenes []types.Scene, track *types.NarrationTrack, outDir string) (*types.VideoArtifact, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to render")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}

	log.Printf("[render] Rendering %d scenes at %s...", len(scenes), c.visual.Resolution)

	var sceneFiles []string
	for i, scene := range scenes {
		file := filepath.Join(outDir, fmt.Sprintf("scene_%03d.mp4", i))
		if err := c.renderScene(ctx, scene, file); err != nil {
			return nil, &RenderError{Scenes: scenes, Err: fmt.Errorf("scene %d: %w", i, err)}
		}
		sceneFiles = append(sceneFiles, file)
	}

	silentVideo := filepath.Join(outDir, "video_raw.mp4")
	if err := c.concatScenes(ctx, sceneFiles, silentVideo); err != nil {
		return nil, &RenderError{Scenes: scenes, Err: fmt.Errorf("concatenate scenes: %w", err)}
	}

	finalVideo := filepath.Join(outDir, "final_video.mp4")
	if err := c.runFFmpeg(ctx,
		"-i", silentVideo,
		"-i", track.File,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		finalVideo,
	); err != nil {
		return nil, &RenderError{Scenes: scenes, Err: fmt.Errorf("combine video+audio: %w", err)}
	}

	artifact := &types.VideoArtifact{
		Path:            finalVideo,
		DurationSeconds: track.TotalSeconds,
		Resolution:      c.visual.Resolution,
	}
	log.Printf("[render] ✅ Final video ready: %s (%.1fs)", finalVideo, artifact.DurationSeconds)
	return artifact, nil
}

// renderScene encodes one background-color clip with the scene's caption
// overlays enabled on their time windows (relative to the scene start).
func (c *Composer) renderScene(ctx context.Context, scene types.Scene, outFile string) error {
	duration := scene.EndSeconds - scene.StartSeconds
	if duration <= 0 {
		duration = 0.04 // one frame floor so concat never sees an empty clip
	}

	filters := make([]string, 0, len(scene.Captions))
	for _, caption := range scene.Captions {
		start := caption.StartSeconds - scene.StartSeconds
		end := caption.EndSeconds - scene.StartSeconds
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontcolor=%s:fontsize=%d:x=(w-text_w)/2:y=h-text_h-80:"+
				"box=1:boxcolor=black@0.4:boxborderw=12:enable='between(t,%.3f,%.3f)'",
			escapeDrawtext(caption.Text), ffmpegColor(c.visual.TextColor), c.visual.FontSize, start, end,
		))
	}

	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%s:r=%d:d=%.3f",
			ffmpegColor(scene.BackgroundColor), c.visual.Resolution, c.visual.FrameRate, duration),
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	return c.runFFmpeg(ctx, args...)
}

// concatScenes joins scene clips in order using the concat demuxer.
func (c *Composer) concatScenes(ctx context.Context, files []string, outFile string) error {
	listFile := filepath.Join(filepath.Dir(outFile), "scenes_concat.txt")
	var lines []string
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("file '%s'", f))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}
	return c.runFFmpeg(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	)
}

func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", append([]string{"-y"}, args...)...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ffmpegColor converts "#1a1a2e" to ffmpeg's 0x1a1a2e form; named colors pass
// through.
func ffmpegColor(color string) string {
	if strings.HasPrefix(color, "#") {
		return "0x" + strings.TrimPrefix(color, "#")
	}
	return color
}

// escapeDrawtext escapes text for ffmpeg's drawtext filter.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}
