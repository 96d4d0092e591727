// Command demo runs the pipeline stages end to end without any network,
// API key, or ffmpeg: sample articles, a template script, estimated caption
// timings, and a printed scene plan.
package main

import (
	"context"
	"fmt"
	"log"

	"aiml-news-pipeline/captions"
	"aiml-news-pipeline/config"
	"aiml-news-pipeline/news"
	"aiml-news-pipeline/render"
	"aiml-news-pipeline/script"
	"aiml-news-pipeline/timing"
	"aiml-news-pipeline/types"
)

func main() {
	cfg := config.Default()
	cfg.Video.CaptionsEnabled = true

	fmt.Println("=== Sample articles ===")
	articles := news.Mock(3)
	for i, a := range articles {
		fmt.Printf("%d. %s (%s)\n", i+1, a.Title, a.Source)
	}

	fmt.Println("\n=== Script (template, Educational tone) ===")
	structurer := script.New(cfg, nil)
	scr, err := structurer.Generate(context.Background(), articles, script.Options{
		TargetMinutes: 3,
		Tone:          types.ToneEducational,
		ChannelName:   "AI Insights",
	})
	if err != nil {
		log.Fatalf("script generation: %v", err)
	}
	for i, sec := range scr.Sections {
		fmt.Printf("[%d] %s (%.1fs): %.80s...\n", i, sec.Kind, sec.EstimatedSeconds, sec.Narration)
	}
	fmt.Printf("Total estimated: %.1fs (target %d min)\n", scr.EstimatedSeconds, scr.TargetMinutes)
	if advisory := script.DurationAdvisory(scr); advisory != "" {
		fmt.Println("Advisory:", advisory)
	}

	fmt.Println("\n=== Captions (estimated timings) ===")
	caps := captions.ForScript(scr, cfg.Captions.MaxChars)
	for _, c := range caps[:min(5, len(caps))] {
		fmt.Printf("%6.2f–%6.2f  %s\n", c.StartSeconds, c.EndSeconds, c.Text)
	}
	fmt.Printf("... %d captions total\n", len(caps))

	fmt.Println("\n=== Scene plan ===")
	// Fabricate a track from the estimates; a real run measures the audio.
	track := &types.NarrationTrack{}
	for i, sec := range scr.Sections {
		dur := timing.EstimateDuration(sec.Narration, cfg.Script.WordsPerMinute)
		track.Segments = append(track.Segments, types.AudioSegment{SectionIndex: i, DurationSeconds: dur})
		track.TotalSeconds += dur
	}
	scenes := render.BuildScenes(track, caps, types.VisualConfig{
		BackgroundColor: cfg.Video.BackgroundColor,
		TextColor:       cfg.Video.TextColor,
		FontSize:        cfg.Video.FontSize,
		CaptionsEnabled: cfg.Video.CaptionsEnabled,
		Resolution:      cfg.Video.Resolution,
		FrameRate:       cfg.Video.FPS,
	})
	for _, s := range scenes {
		fmt.Printf("scene %d: %6.2f–%6.2f  %s  %d captions\n",
			s.SectionIndex, s.StartSeconds, s.EndSeconds, s.BackgroundColor, len(s.Captions))
	}
	fmt.Printf("\nDry run complete: %d scenes, %.1fs video planned.\n", len(scenes), track.TotalSeconds)
}
