// Package openaichat implements the Completer interface using the OpenAI
// chat completions API. It is the fallback backend for deployments without
// a Gemini credential.
package openaichat

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/luxvoice/schwaetzbot/internal/config"
	"github.com/luxvoice/schwaetzbot/internal/llm"
)

// Completer uses the OpenAI chat completions SDK.
type Completer struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI completer from config.
func New(cfg config.OpenAIConfig) *Completer {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Completer{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "openai" }

// Complete sends the prompt as a single user message and returns the reply.
func (c *Completer) Complete(ctx context.Context, promptText string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: promptText},
		},
	})
	if err != nil {
		return "", &llm.CompletionError{Err: fmt.Errorf("chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &llm.CompletionError{Err: fmt.Errorf("no choices returned")}
	}

	slog.Debug("openai completion received", "model", c.model, "text_length", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op for the OpenAI completer.
func (c *Completer) Close() error { return nil }
