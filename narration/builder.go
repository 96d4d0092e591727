// Package narration synthesizes per-section audio and assembles it into one
// continuous track. Sections are synthesized concurrently but reassembled
// strictly in section order, and a single failure discards everything — no
// partial track is ever exposed downstream.
package narration

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"aiml-news-pipeline/config"
	"aiml-news-pipeline/timing"
	"aiml-news-pipeline/tts"
	"aiml-news-pipeline/types"
)

// Builder turns script sections into a NarrationTrack using one configured
// provider.
type Builder struct {
	provider tts.Provider
	opts     tts.Options
	workers  int
	wpm      int

	// Replaceable for tests.
	probeDuration func(path string) (float64, error)
	concat        func(ctx context.Context, files []string, outFile string) error
}

// New creates a Builder for the given provider.
func New(provider tts.Provider, opts tts.Options, cfg *config.Config) *Builder {
	workers := cfg.TTS.Concurrency
	if workers <= 0 {
		workers = 4
	}
	return &Builder{
		provider:      provider,
		opts:          opts,
		workers:       workers,
		wpm:           cfg.Script.WordsPerMinute,
		probeDuration: ffprobeDuration,
		concat:        ffmpegConcat,
	}
}

// Build synthesizes every section and returns the assembled track. Synthesis
// requests run concurrently (bounded by the worker limit) and any failure
// fails the whole call with a SynthesisError naming the section and provider;
// already-fetched segments are discarded.
func (b *Builder) Build(ctx context.Context, sections []types.ScriptSection, outDir string) (*types.NarrationTrack, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections to synthesize")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	log.Printf("[narration] Synthesizing %d sections via %s (%d workers)...",
		len(sections), b.provider.Name(), b.workers)

	segments := make([]types.AudioSegment, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range sections {
		i := i
		sec := sections[i]
		g.Go(func() error {
			seg, err := b.synthesizeSection(gctx, i, sec, outDir)
			if err != nil {
				return err
			}
			segments[i] = seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	track := &types.NarrationTrack{Segments: segments}
	for _, seg := range segments {
		track.TotalSeconds += seg.DurationSeconds
	}

	var files []string
	for _, seg := range segments {
		if seg.File != "" {
			files = append(files, seg.File)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no audio produced: every section was empty")
	}

	finalFile := filepath.Join(outDir, "narration_final.mp3")
	if err := b.concat(ctx, files, finalFile); err != nil {
		return nil, fmt.Errorf("concatenate audio: %w", err)
	}
	track.File = finalFile

	log.Printf("[narration] ✅ Track ready: %s (total: %.1fs)", finalFile, track.TotalSeconds)
	return track, nil
}

func (b *Builder) synthesizeSection(ctx context.Context, index int, sec types.ScriptSection, outDir string) (types.AudioSegment, error) {
	seg := types.AudioSegment{SectionIndex: index}

	if strings.TrimSpace(sec.Narration) == "" {
		return seg, nil
	}

	audio, err := b.provider.Synthesize(ctx, sec.Narration, b.opts)
	if err != nil {
		return seg, &tts.SynthesisError{SectionIndex: index, Provider: b.provider.Name(), Err: err}
	}

	file := filepath.Join(outDir, fmt.Sprintf("section_%03d.mp3", index))
	if err := os.WriteFile(file, audio, 0644); err != nil {
		return seg, fmt.Errorf("write section %d audio: %w", index, err)
	}
	seg.File = file

	dur, err := b.probeDuration(file)
	if err != nil {
		log.Printf("[narration] Warning: could not measure duration for section %d, using estimate", index)
		dur = timing.EstimateDuration(sec.Narration, b.wpm)
	}
	seg.DurationSeconds = dur

	log.Printf("[narration] Section %d: %.2fs → %s", index, seg.DurationSeconds, file)
	return seg, nil
}

// ffmpegConcat joins audio files in order using the ffmpeg concat demuxer.
func ffmpegConcat(ctx context.Context, files []string, outFile string) error {
	listFile := filepath.Join(filepath.Dir(outFile), "concat_list.txt")
	var lines []string
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("file '%s'", f))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ffprobeDuration measures an audio file's duration in seconds.
func ffprobeDuration(path string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}
