// Package gemini implements the Completer interface against the Google
// Generative Language REST API (generateContent).
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/luxvoice/schwaetzbot/internal/config"
	"github.com/luxvoice/schwaetzbot/internal/llm"
)

// Completer uses the Gemini generateContent API.
type Completer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a new Gemini completer from config.
func New(cfg config.GeminiConfig) *Completer {
	return &Completer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "gemini" }

// --- Wire types ---

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt to Gemini and returns the completion text.
func (c *Completer) Complete(ctx context.Context, promptText string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: promptText}}}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &llm.CompletionError{Err: fmt.Errorf("marshalling request: %w", err)}
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &llm.CompletionError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &llm.CompletionError{Err: fmt.Errorf("gemini request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &llm.CompletionError{Err: fmt.Errorf("gemini failed (status %d): %s", resp.StatusCode, respBody)}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", &llm.CompletionError{Err: fmt.Errorf("decoding gemini response: %w", err)}
	}
	if len(genResp.Candidates) == 0 {
		return "", &llm.CompletionError{Err: fmt.Errorf("no candidates returned")}
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	slog.Debug("gemini completion received", "model", c.model, "text_length", sb.Len())
	return sb.String(), nil
}

// Close is a no-op for the Gemini completer.
func (c *Completer) Close() error { return nil }
