package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAI is the premium provider backed by the OpenAI speech API.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI creates the OpenAI TTS provider.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (o *OpenAI) Name() string { return "openai" }

// Synthesize requests MP3 audio for the text. Voice defaults to "alloy" when
// unset (valid voices: alloy, echo, fable, onyx, nova, shimmer).
func (o *OpenAI) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	voice := opts.Voice
	if voice == "" {
		voice = "alloy"
	}

	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}
