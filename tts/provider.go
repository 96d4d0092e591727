// Package tts holds the speech-synthesis providers: the free Google Translate
// voice as the baseline and OpenAI TTS and ElevenLabs as the premium options.
// The provider is selected by configuration at a single dispatch point; there
// is no automatic fallback between providers.
package tts

import (
	"context"
	"fmt"
	"os"
)

// Options carries per-request voice settings.
type Options struct {
	Voice    string // provider-specific voice name or ID
	Language string // two-letter language code, used by the free provider
}

// Provider synthesizes narration audio for one section of text.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts Options) ([]byte, error)
}

// SynthesisError reports a failed synthesis call, naming the section and
// provider so the operator can re-select and retry.
type SynthesisError struct {
	SectionIndex int
	Provider     string
	Err          error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for section %d (provider %s): %v", e.SectionIndex, e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// UnsupportedProviderError reports a provider name outside the known set.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported TTS provider %q (valid: gtts, openai, elevenlabs)", e.Name)
}

// ForName returns the configured provider variant. Unknown names fail with
// UnsupportedProviderError instead of silently defaulting.
func ForName(name string) (Provider, error) {
	switch name {
	case "gtts":
		return NewGoogleTranslate(), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return NewOpenAI(apiKey), nil
	case "elevenlabs":
		apiKey := os.Getenv("ELEVENLABS_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ELEVENLABS_API_KEY not set")
		}
		return NewElevenLabs(apiKey), nil
	default:
		return nil, &UnsupportedProviderError{Name: name}
	}
}
