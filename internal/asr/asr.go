// Package asr defines the interface for speech-to-text transcription.
package asr

import (
	"context"
	"strings"
)

// Transcriber converts recorded audio to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "luxasr").
	Name() string

	// Transcribe converts audio bytes to text. It never reports success
	// with a silently-empty result: an empty or whitespace-only return
	// with a nil error means the service genuinely recognized nothing,
	// and callers must treat that as the explicit "nothing recognized"
	// condition rather than a usable transcript.
	Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error)

	// Close releases any resources held by the transcriber.
	Close() error
}

// TranscriptionError wraps a transport failure or non-success status from
// the transcription service. It is terminal for the turn.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return "transcription: " + e.Err.Error() }

func (e *TranscriptionError) Unwrap() error { return e.Err }

// MIMEFromFilename infers an audio MIME type from the uploaded file name.
// Unrecognized extensions fall back to a generic binary type.
func MIMEFromFilename(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".wav"):
		return "audio/wav"
	case strings.HasSuffix(strings.ToLower(filename), ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(strings.ToLower(filename), ".m4a"):
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
