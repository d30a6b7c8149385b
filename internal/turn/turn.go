// Package turn defines the core data types for one request/response cycle.
//
// A turn flows linearly through the pipeline stages (transcribe → complete →
// extract → synthesize) and is discarded once the response is serialized.
// Nothing in this package is shared between concurrent turns.
package turn

import "time"

// Modality classifies how the user's utterance arrived.
type Modality string

const (
	// ModalityText means the utterance was typed and transcription is skipped.
	ModalityText Modality = "text"

	// ModalityAudio means the utterance is an audio recording that must be
	// transcribed before the pipeline can continue.
	ModalityAudio Modality = "audio"
)

// Stage identifies a pipeline stage in logs and stage errors.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageComplete   Stage = "complete"
	StageExtract    Stage = "extract"
	StageSynthesize Stage = "synthesize"
)

// Request represents an incoming utterance from the HTTP surface.
type Request struct {
	// ID is a unique identifier for this turn (UUID).
	ID string `json:"id"`

	// Modality is set once at ingress and never changes.
	Modality Modality `json:"modality"`

	// Text is the typed utterance. Only set for ModalityText.
	Text string `json:"text,omitempty"`

	// Audio is the raw recording. Only set for ModalityAudio; it is read
	// exactly once, by the transcription adapter.
	Audio []byte `json:"-"`

	// Filename is the uploaded file name, used to infer the MIME type when
	// the client did not declare one.
	Filename string `json:"filename,omitempty"`

	// ContentType is the declared MIME type of Audio, possibly empty.
	ContentType string `json:"content_type,omitempty"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`
}

// HasAudio returns true if the request carries an audio payload.
func (r *Request) HasAudio() bool {
	return len(r.Audio) > 0
}

// StageError records a failure observed at one stage. The slice on Result is
// append-only; entries are never rewritten or cleared.
type StageError struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Result is the outcome of running a turn through the pipeline. Its JSON
// shape is the 200 response body of POST /process_audio.
type Result struct {
	// RequestID echoes the Request.ID for log correlation.
	RequestID string `json:"-"`

	// TranscribedText is the recognized (or typed) utterance, or a fixed
	// placeholder when recognition produced nothing usable.
	TranscribedText string `json:"transcribed_text"`

	// Completion is the raw generative-model reply, or a fixed apology /
	// error text when the completion stage never ran or failed.
	Completion string `json:"gemini_response"`

	// SpeechSegment is the exact substring sent to synthesis. May be empty.
	SpeechSegment string `json:"-"`

	// AudioBase64 is the synthesized reply audio. Nil (serialized as null)
	// when synthesis was skipped, failed, or produced no payload.
	AudioBase64 *string `json:"audio_response_base64"`

	// StageErrors lists every stage failure in the order it occurred.
	StageErrors []StageError `json:"-"`

	// FailedStage is set when the turn terminated early. Only the
	// transcribe and complete stages can terminate a turn.
	FailedStage Stage `json:"-"`
}

// RecordError appends a stage failure to the turn's error log.
func (r *Result) RecordError(stage Stage, err error) {
	r.StageErrors = append(r.StageErrors, StageError{Stage: stage, Message: err.Error()})
}

// Failed reports whether the turn terminated before completing all stages.
func (r *Result) Failed() bool {
	return r.FailedStage != ""
}

// SetAudio stores a non-empty base64 audio payload on the result.
func (r *Result) SetAudio(b64 string) {
	if b64 != "" {
		r.AudioBase64 = &b64
	}
}
