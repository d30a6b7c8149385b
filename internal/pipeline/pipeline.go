// Package pipeline implements the relay engine for one conversation turn.
//
// The engine sequences the stages transcribe → complete → extract →
// synthesize, strictly one after another: each stage consumes the previous
// stage's output. Transcription and completion failures terminate the turn;
// an empty transcript short-circuits to a fixed apology without prompting
// the model; synthesis failures degrade to a text-only reply. Every
// external call is attempted exactly once — no retries.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/luxvoice/schwaetzbot/internal/asr"
	"github.com/luxvoice/schwaetzbot/internal/llm"
	"github.com/luxvoice/schwaetzbot/internal/prompt"
	"github.com/luxvoice/schwaetzbot/internal/tts"
	"github.com/luxvoice/schwaetzbot/internal/turn"
)

// Fixed user-facing strings substituted when a stage cannot produce output.
const (
	// NoTranscriptText replaces transcribed_text when recognition
	// produced nothing usable.
	NoTranscriptText = "Erreur LuxASR: Pas de texte reconnu ou format inattendu."

	// TranscriptionFailedText replaces transcribed_text when the
	// recognition call itself failed.
	TranscriptionFailedText = "Erreur de transcription LuxASR."

	// ApologyText replaces gemini_response when no completion could be
	// requested.
	ApologyText = "Désolé, je n'ai pas pu transcrire votre demande."
)

// Engine runs turns through the relay pipeline.
type Engine struct {
	transcriber asr.Transcriber
	completer   llm.Completer
	synthesizer tts.Synthesizer // nil if TTS is disabled
}

// New creates a new Engine. A nil synthesizer disables the synthesis stage.
func New(transcriber asr.Transcriber, completer llm.Completer, synthesizer tts.Synthesizer) *Engine {
	return &Engine{
		transcriber: transcriber,
		completer:   completer,
		synthesizer: synthesizer,
	}
}

// Process runs a single turn through the full pipeline. It always returns a
// result; terminal failures are reported through Result.FailedStage and the
// substituted apology texts, never through a Go error.
func (e *Engine) Process(ctx context.Context, req *turn.Request) *turn.Result {
	start := time.Now()
	logger := slog.With("request_id", req.ID, "modality", req.Modality)

	result := &turn.Result{RequestID: req.ID}

	// Ingress: seed the transcript. Text input skips the transcribe stage.
	var transcript string
	switch req.Modality {
	case turn.ModalityText:
		transcript = req.Text
		result.TranscribedText = transcript
		logger.Debug("using text input directly", "text_length", len(transcript))
	default:
		logger.Debug("transcribing audio", "content_type", req.ContentType, "bytes", len(req.Audio))
		text, err := e.transcriber.Transcribe(ctx, req.Audio, req.Filename, req.ContentType)
		if err != nil {
			result.RecordError(turn.StageTranscribe, err)
			result.FailedStage = turn.StageTranscribe
			result.TranscribedText = TranscriptionFailedText
			result.Completion = fmt.Sprintf("Désolé, je n'ai pas pu transcrire votre demande en raison d'une erreur LuxASR : %v", err)
			logger.Error("transcription failed", "error", err)
			return result
		}
		transcript = text
		result.TranscribedText = transcript
		logger.Info("transcription complete", "text_length", len(transcript))
	}

	// Nothing recognized: answer with the fixed apology instead of wasting
	// a completion call on a garbage prompt.
	if strings.TrimSpace(transcript) == "" {
		if req.Modality == turn.ModalityAudio {
			result.TranscribedText = NoTranscriptText
		}
		result.Completion = ApologyText
		logger.Info("nothing recognized, skipping completion", "duration", time.Since(start))
		return result
	}

	// Completing: build the dual-language instruction and request a reply.
	completion, err := e.completer.Complete(ctx, prompt.Build(transcript))
	if err != nil {
		result.RecordError(turn.StageComplete, err)
		result.FailedStage = turn.StageComplete
		result.Completion = fmt.Sprintf("Erreur de génération de réponse : %v", err)
		logger.Error("completion failed", "backend", e.completer.Name(), "error", err)
		return result
	}
	result.Completion = completion
	logger.Info("completion received", "backend", e.completer.Name(), "text_length", len(completion))

	// Extracting: never fails; an empty segment is a valid result.
	segment := prompt.ExtractSpeechSegment(completion)
	result.SpeechSegment = segment

	// Synthesizing: skipped for empty segments, absorbed on failure.
	switch {
	case segment == "":
		logger.Info("no speech segment, skipping synthesis")
	case e.synthesizer == nil:
		logger.Debug("synthesis disabled")
	default:
		audioB64, err := e.synthesizer.Synthesize(ctx, segment)
		switch {
		case err != nil:
			result.RecordError(turn.StageSynthesize, err)
			logger.Warn("synthesis failed, continuing without audio", "error", err)
		case audioB64 == "":
			logger.Info("synthesis returned no audio payload")
		default:
			result.SetAudio(audioB64)
			logger.Info("synthesis complete", "audio_base64_length", len(audioB64))
		}
	}

	logger.Info("turn complete", "duration", time.Since(start), "has_audio", result.AudioBase64 != nil)
	return result
}
