package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// The unofficial Google Translate voice endpoint caps input length per
// request, so long sections are synthesized in chunks and the MP3 frames are
// concatenated.
const gttsMaxChunk = 200

// GoogleTranslate is the free baseline provider.
type GoogleTranslate struct {
	httpClient *http.Client
	endpoint   string
}

// NewGoogleTranslate creates the free provider.
func NewGoogleTranslate() *GoogleTranslate {
	return &GoogleTranslate{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   "https://translate.google.com/translate_tts",
	}
}

func (g *GoogleTranslate) Name() string { return "gtts" }

// Synthesize fetches MP3 audio for the text, chunking at word boundaries to
// stay under the endpoint's length cap.
func (g *GoogleTranslate) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	var audio []byte
	for _, chunk := range splitChunks(text, gttsMaxChunk) {
		part, err := g.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		audio = append(audio, part...)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty text")
	}
	return audio, nil
}

func (g *GoogleTranslate) fetchChunk(ctx context.Context, text, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, "GET", g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate_tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate_tts status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// splitChunks packs whitespace-separated words into chunks of at most max
// characters, never breaking mid-word.
func splitChunks(text string, max int) []string {
	var chunks []string
	cur := ""
	for _, word := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= max:
			cur += " " + word
		default:
			chunks = append(chunks, cur)
			cur = word
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}
