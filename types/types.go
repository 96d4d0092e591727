package types

// Article is one news item as fetched. Immutable once fetched; the operator
// only selects or deselects it.
type Article struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Source        string `json:"source"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
}

// SectionKind names the role of a script section.
type SectionKind string

const (
	SectionIntro   SectionKind = "intro"
	SectionArticle SectionKind = "article"
	SectionOutro   SectionKind = "outro"
)

// Tone is the narration style for the whole script.
type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneCasual       Tone = "Casual"
	ToneEnthusiastic Tone = "Enthusiastic"
	ToneEducational  Tone = "Educational"
)

// Tones lists every supported tone.
var Tones = []Tone{ToneProfessional, ToneCasual, ToneEnthusiastic, ToneEducational}

// ScriptSection is one ordered unit of the script: the intro, one segment per
// selected article, or the outro.
type ScriptSection struct {
	Kind             SectionKind `json:"kind"`
	Article          *Article    `json:"article,omitempty"`
	Narration        string      `json:"narration"`
	EstimatedSeconds float64     `json:"estimated_seconds"`
}

// Script is the full structured script for one video.
type Script struct {
	Sections         []ScriptSection `json:"sections"`
	TargetMinutes    int             `json:"target_minutes"`
	Tone             Tone            `json:"tone"`
	ChannelName      string          `json:"channel_name"`
	EstimatedSeconds float64         `json:"estimated_seconds"`
}

// Caption is one timestamped on-screen text chunk derived from a section's
// narration. Never edited directly; regenerated whenever the script changes.
type Caption struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	SectionIndex int     `json:"section_index"`
}

// AudioSegment is the synthesized narration for one section.
type AudioSegment struct {
	SectionIndex    int     `json:"section_index"`
	File            string  `json:"file"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// NarrationTrack is the assembled audio for the whole script, in section
// order. TotalSeconds comes from measured audio and supersedes the text-based
// estimates used for pacing.
type NarrationTrack struct {
	Segments     []AudioSegment `json:"segments"`
	File         string         `json:"file"`
	TotalSeconds float64        `json:"total_seconds"`
}

// StartOffset returns the start time of segment i within the track.
func (t *NarrationTrack) StartOffset(i int) float64 {
	var off float64
	for j := 0; j < i && j < len(t.Segments); j++ {
		off += t.Segments[j].DurationSeconds
	}
	return off
}

// Scene is one visual segment of the rendered video, aligned to one audio
// section.
type Scene struct {
	SectionIndex    int       `json:"section_index"`
	StartSeconds    float64   `json:"start_seconds"`
	EndSeconds      float64   `json:"end_seconds"`
	BackgroundColor string    `json:"background_color"`
	Captions        []Caption `json:"captions,omitempty"`
}

// VisualConfig holds the recognized rendering options.
type VisualConfig struct {
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontSize        int    `json:"font_size"`
	CaptionsEnabled bool   `json:"captions_enabled"`
	Resolution      string `json:"resolution"`
	FrameRate       int    `json:"frame_rate"`
}

// VideoArtifact is the final rendered output. Written once, never mutated.
type VideoArtifact struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	Resolution      string  `json:"resolution"`
}
