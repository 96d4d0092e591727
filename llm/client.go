// Package llm wraps the text-generation collaborator behind a one-method
// interface so pipeline stages can be tested with canned responses.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GenerationError reports a failed or unparseable text-generation call.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Op)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Completer is the text-generation collaborator. Both news summarization and
// script generation go through it.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// OpenAI is the live Completer backed by the OpenAI chat completions API.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAI creates a live Completer for the given model.
func NewOpenAI(apiKey, model string, temperature float64) *OpenAI {
	return &OpenAI{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: temperature,
	}
}

// Complete sends a single-message completion request and returns the reply
// text.
func (c *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.model),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", &GenerationError{Op: "chat completion", Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", &GenerationError{Op: "chat completion", Err: fmt.Errorf("no choices returned")}
	}
	return completion.Choices[0].Message.Content, nil
}
