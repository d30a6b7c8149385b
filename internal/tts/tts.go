// Package tts defines the interface for text-to-speech synthesis.
//
// Synthesis is the only pipeline stage whose failure never fails the turn:
// the transcription and text reply are still returned without audio.
package tts

import "context"

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "piper").
	Name() string

	// Synthesize generates audio for the given text and returns it
	// base64-encoded, with any data-URL prefix already stripped. An empty
	// string with a nil error means the service produced no audio payload,
	// which is a valid degraded outcome rather than a fault. The text must
	// be non-empty; callers skip synthesis entirely for empty segments.
	Synthesize(ctx context.Context, text string) (string, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesisError wraps a transport failure or non-success status from the
// synthesis service. It is recorded but never terminal for the turn.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return "synthesis: " + e.Err.Error() }

func (e *SynthesisError) Unwrap() error { return e.Err }
