// Package luxasr implements the Transcriber interface against the LuxASR
// service (luxasr.uni.lu), a Luxembourgish speech-recognition API.
//
// The v2 API takes a multipart upload in the "audio_file" field with query
// parameters controlling diarization and output format. Deployed versions
// have differed on which JSON field carries the transcript ("text",
// "recognized_text", or a "segments" list), so the field to read is tried
// in configured priority order instead of being hard-coded.
package luxasr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/luxvoice/schwaetzbot/internal/asr"
	"github.com/luxvoice/schwaetzbot/internal/config"
)

// Transcriber uses the LuxASR v2 HTTP API for transcription.
type Transcriber struct {
	endpoint       string
	diarization    string
	outputFormat   string
	responseFields []string
	client         *http.Client
}

// New creates a new LuxASR transcriber from config.
func New(cfg config.ASRConfig) *Transcriber {
	fields := cfg.ResponseFields
	if len(fields) == 0 {
		fields = []string{"text", "recognized_text", "segments"}
	}
	return &Transcriber{
		endpoint:       cfg.Endpoint,
		diarization:    cfg.Diarization,
		outputFormat:   cfg.OutputFormat,
		responseFields: fields,
		client:         &http.Client{},
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "luxasr" }

// Transcribe uploads the audio to LuxASR and returns the recognized text.
// A nil error with empty text means the service recognized nothing.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	if len(audio) == 0 {
		return "", &asr.TranscriptionError{Err: errors.New("empty audio payload")}
	}

	if filename == "" {
		filename = "audio.wav"
	}
	if contentType == "" {
		contentType = asr.MIMEFromFilename(filename)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// CreateFormFile would pin the part to application/octet-stream; the
	// service keys decoding off the declared audio type, so build the part
	// headers explicitly.
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio_file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := writer.CreatePart(hdr)
	if err != nil {
		return "", &asr.TranscriptionError{Err: fmt.Errorf("creating form part: %w", err)}
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return "", &asr.TranscriptionError{Err: fmt.Errorf("writing audio: %w", err)}
	}
	writer.Close()

	q := make(url.Values)
	q.Set("diarization", t.diarization)
	q.Set("outfmt", t.outputFormat)
	reqURL := t.endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return "", &asr.TranscriptionError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	slog.Debug("luxasr request", "url", reqURL, "filename", filename, "content_type", contentType, "bytes", len(audio))

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &asr.TranscriptionError{Err: fmt.Errorf("luxasr request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &asr.TranscriptionError{Err: fmt.Errorf("luxasr failed (status %d): %s", resp.StatusCode, respBody)}
	}

	var result struct {
		Text           string `json:"text"`
		RecognizedText string `json:"recognized_text"`
		Segments       []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &asr.TranscriptionError{Err: fmt.Errorf("decoding luxasr response: %w", err)}
	}

	text := ""
	for _, field := range t.responseFields {
		switch field {
		case "text":
			text = result.Text
		case "recognized_text":
			text = result.RecognizedText
		case "segments":
			parts := make([]string, 0, len(result.Segments))
			for _, s := range result.Segments {
				if s.Text != "" {
					parts = append(parts, s.Text)
				}
			}
			text = strings.Join(parts, " ")
		}
		if text != "" {
			break
		}
	}

	slog.Debug("luxasr transcription complete", "text_length", len(text))
	return text, nil
}

// Close is a no-op — connections are per-request.
func (t *Transcriber) Close() error { return nil }
