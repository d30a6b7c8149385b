// Package piper implements the Synthesizer interface against a Piper TTS
// instance hosted as a Gradio space.
//
// Piper is a fast neural text-to-speech system; the Luxembourgish voice is
// served from a Hugging Face space that exposes the classic Gradio predict
// endpoint:
//
//	POST /run/predict  {"fn_index": 0, "data": ["<text>"]}
//	→ {"data": ["data:audio/wav;base64,<payload>"]}
//
// The data entry may or may not carry the data-URL prefix depending on the
// space version; anything up to the first comma is stripped.
package piper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/luxvoice/schwaetzbot/internal/config"
	"github.com/luxvoice/schwaetzbot/internal/tts"
)

// Synthesizer uses a Gradio-hosted Piper endpoint.
type Synthesizer struct {
	endpoint string
	client   *http.Client
}

// New creates a new Piper synthesizer from config.
func New(cfg config.TTSConfig) *Synthesizer {
	return &Synthesizer{
		endpoint: cfg.Endpoint,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "piper" }

// Synthesize sends the text to the Piper space and returns base64 audio.
// An empty string with a nil error means the space returned no payload.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &tts.SynthesisError{Err: errors.New("empty text for synthesis")}
	}

	reqBody := map[string]any{
		"fn_index": 0,
		"data":     []string{text},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &tts.SynthesisError{Err: fmt.Errorf("marshalling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &tts.SynthesisError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("piper synthesize", "text_length", len(text), "endpoint", s.endpoint)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &tts.SynthesisError{Err: fmt.Errorf("piper request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &tts.SynthesisError{Err: fmt.Errorf("piper failed (status %d): %s", resp.StatusCode, respBody)}
	}

	var result struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &tts.SynthesisError{Err: fmt.Errorf("decoding piper response: %w", err)}
	}

	if len(result.Data) == 0 || result.Data[0] == "" {
		slog.Debug("piper returned no audio payload")
		return "", nil
	}

	payload := result.Data[0]
	if i := strings.Index(payload, ","); i != -1 {
		payload = payload[i+1:]
	}

	slog.Debug("piper synthesis complete", "audio_base64_length", len(payload))
	return payload, nil
}

// Close is a no-op — connections are per-request.
func (s *Synthesizer) Close() error { return nil }
