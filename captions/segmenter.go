// Package captions derives timestamped caption chunks from a section's
// narration text. Captions are never edited directly; any script change means
// regenerating them.
package captions

import (
	"aiml-news-pipeline/types"
)

// DefaultMaxChars bounds caption length when no limit is configured.
const DefaultMaxChars = 80

// Build splits a section's narration into caption chunks of at most maxChars
// characters, breaking only at word boundaries, and assigns timestamps by
// linear interpolation: a chunk's share of the section's characters is its
// share of the section's duration, offset by sectionStart. Empty narration
// yields an empty list.
func Build(section types.ScriptSection, sectionIndex int, sectionStart float64, maxChars int) []types.Caption {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	chunks := chunkWords(section.Narration, maxChars)
	if len(chunks) == 0 {
		return nil
	}

	totalChars := 0
	for _, c := range chunks {
		totalChars += len([]rune(c))
	}

	out := make([]types.Caption, 0, len(chunks))
	elapsed := 0
	start := sectionStart
	for i, c := range chunks {
		elapsed += len([]rune(c))
		end := sectionStart + section.EstimatedSeconds*float64(elapsed)/float64(totalChars)
		if i == len(chunks)-1 {
			// Avoid float drift: the last caption ends exactly at the
			// section boundary.
			end = sectionStart + section.EstimatedSeconds
		}
		out = append(out, types.Caption{
			Text:         c,
			StartSeconds: start,
			EndSeconds:   end,
			SectionIndex: sectionIndex,
		})
		start = end
	}
	return out
}

// ForScript builds captions for every section using the script's estimated
// durations as section offsets.
func ForScript(script *types.Script, maxChars int) []types.Caption {
	var out []types.Caption
	var offset float64
	for i, sec := range script.Sections {
		out = append(out, Build(sec, i, offset, maxChars)...)
		offset += sec.EstimatedSeconds
	}
	return out
}

// ForTrack builds captions aligned to measured audio: each section's captions
// are interpolated over its segment's real duration and offset by the
// segment's position in the track.
func ForTrack(script *types.Script, track *types.NarrationTrack, maxChars int) []types.Caption {
	var out []types.Caption
	for _, seg := range track.Segments {
		if seg.SectionIndex < 0 || seg.SectionIndex >= len(script.Sections) {
			continue
		}
		sec := script.Sections[seg.SectionIndex]
		sec.EstimatedSeconds = seg.DurationSeconds
		out = append(out, Build(sec, seg.SectionIndex, track.StartOffset(seg.SectionIndex), maxChars)...)
	}
	return out
}

// chunkWords greedily packs whitespace-separated words into chunks of at most
// maxChars characters. A single word longer than maxChars becomes its own
// chunk rather than being split mid-word.
func chunkWords(text string, maxChars int) []string {
	var chunks []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for _, word := range fieldsRunes(text) {
		switch {
		case len(cur) == 0:
			cur = append(cur, word...)
		case len(cur)+1+len(word) <= maxChars:
			cur = append(cur, ' ')
			cur = append(cur, word...)
		default:
			flush()
			cur = append(cur, word...)
		}
	}
	flush()
	return chunks
}

func fieldsRunes(text string) [][]rune {
	var fields [][]rune
	var cur []rune
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if len(cur) > 0 {
				fields = append(fields, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		fields = append(fields, cur)
	}
	return fields
}
