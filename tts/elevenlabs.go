package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ElevenLabs is the premium provider backed by the ElevenLabs API.
type ElevenLabs struct {
	apiKey     string
	httpClient *http.Client
	endpoint   string
}

// NewElevenLabs creates the ElevenLabs provider.
func NewElevenLabs(apiKey string) *ElevenLabs {
	return &ElevenLabs{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		endpoint:   "https://api.elevenlabs.io/v1/text-to-speech",
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize requests MP3 audio for the text. Options.Voice carries the
// ElevenLabs voice ID; "Rachel" is the documented default voice.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	voiceID := opts.Voice
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel
	}

	body, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: "eleven_monolingual_v1"})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/%s", e.endpoint, voiceID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, msg)
	}
	return io.ReadAll(resp.Body)
}
