package pipeline_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxvoice/schwaetzbot/internal/asr"
	"github.com/luxvoice/schwaetzbot/internal/llm"
	"github.com/luxvoice/schwaetzbot/internal/pipeline"
	"github.com/luxvoice/schwaetzbot/internal/tts"
	"github.com/luxvoice/schwaetzbot/internal/turn"
)

// --- Test doubles, one per capability interface ---

type fakeTranscriber struct {
	text     string
	err      error
	calls    int
	gotAudio []byte
}

func (f *fakeTranscriber) Name() string { return "fake-asr" }

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	f.calls++
	f.gotAudio = audio
	return f.text, f.err
}

func (f *fakeTranscriber) Close() error { return nil }

type fakeCompleter struct {
	reply     string
	err       error
	calls     int
	gotPrompt string
}

func (f *fakeCompleter) Name() string { return "fake-llm" }

func (f *fakeCompleter) Complete(ctx context.Context, promptText string) (string, error) {
	f.calls++
	f.gotPrompt = promptText
	return f.reply, f.err
}

func (f *fakeCompleter) Close() error { return nil }

type fakeSynthesizer struct {
	audio   string
	err     error
	calls   int
	gotText string
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	f.calls++
	f.gotText = text
	return f.audio, f.err
}

func (f *fakeSynthesizer) Close() error { return nil }

var _ = Describe("Engine.Process", func() {
	var (
		transcriber *fakeTranscriber
		completer   *fakeCompleter
		synthesizer *fakeSynthesizer
		engine      *pipeline.Engine
		ctx         context.Context
	)

	BeforeEach(func() {
		transcriber = &fakeTranscriber{text: "Wéi geet et dir?"}
		completer = &fakeCompleter{reply: "LU : Mir geet et gutt. Question suivante LU : A dir?"}
		synthesizer = &fakeSynthesizer{audio: "UklGRg=="}
		engine = pipeline.New(transcriber, completer, synthesizer)
		ctx = context.Background()
	})

	textRequest := func(text string) *turn.Request {
		return &turn.Request{ID: "t1", Modality: turn.ModalityText, Text: text}
	}

	audioRequest := func() *turn.Request {
		return &turn.Request{
			ID:          "a1",
			Modality:    turn.ModalityAudio,
			Audio:       []byte("RIFFfake"),
			Filename:    "clip.wav",
			ContentType: "audio/wav",
		}
	}

	Context("with a typed question", func() {
		It("skips transcription and embeds the text in the prompt", func() {
			result := engine.Process(ctx, textRequest("Wéi geet et dir?"))

			Expect(transcriber.calls).To(BeZero())
			Expect(completer.gotPrompt).To(ContainSubstring("Wéi geet et dir?"))
			Expect(result.TranscribedText).To(Equal("Wéi geet et dir?"))
			Expect(result.Failed()).To(BeFalse())
		})

		It("synthesizes exactly the extracted answer segment", func() {
			result := engine.Process(ctx, textRequest("Wéi geet et dir?"))

			Expect(synthesizer.calls).To(Equal(1))
			Expect(synthesizer.gotText).To(Equal("Mir geet et gutt."))
			Expect(result.Completion).To(Equal(completer.reply))
			Expect(result.SpeechSegment).To(Equal("Mir geet et gutt."))
			Expect(result.AudioBase64).To(HaveValue(Equal("UklGRg==")))
		})

		It("short-circuits on an empty question without prompting the model", func() {
			result := engine.Process(ctx, textRequest("   "))

			Expect(completer.calls).To(BeZero())
			Expect(synthesizer.calls).To(BeZero())
			Expect(result.Completion).To(Equal(pipeline.ApologyText))
			Expect(result.Failed()).To(BeFalse())
		})
	})

	Context("with recorded audio", func() {
		It("transcribes before prompting", func() {
			result := engine.Process(ctx, audioRequest())

			Expect(transcriber.calls).To(Equal(1))
			Expect(transcriber.gotAudio).To(Equal([]byte("RIFFfake")))
			Expect(result.TranscribedText).To(Equal("Wéi geet et dir?"))
			Expect(completer.gotPrompt).To(ContainSubstring("Wéi geet et dir?"))
		})

		It("substitutes the fixed texts when nothing was recognized", func() {
			transcriber.text = "   "

			result := engine.Process(ctx, audioRequest())

			Expect(completer.calls).To(BeZero())
			Expect(result.TranscribedText).To(Equal(pipeline.NoTranscriptText))
			Expect(result.Completion).To(Equal(pipeline.ApologyText))
			Expect(result.AudioBase64).To(BeNil())
			Expect(result.Failed()).To(BeFalse())
		})

		It("terminates the turn when transcription fails", func() {
			transcriber.err = &asr.TranscriptionError{Err: errors.New("luxasr failed (status 502)")}

			result := engine.Process(ctx, audioRequest())

			Expect(result.Failed()).To(BeTrue())
			Expect(result.FailedStage).To(Equal(turn.StageTranscribe))
			Expect(result.TranscribedText).To(Equal(pipeline.TranscriptionFailedText))
			Expect(result.Completion).To(ContainSubstring("status 502"))
			Expect(completer.calls).To(BeZero())
			Expect(result.StageErrors).To(HaveLen(1))
		})
	})

	Context("when completion fails", func() {
		It("terminates the turn and skips extraction and synthesis", func() {
			completer.reply = ""
			completer.err = &llm.CompletionError{Err: errors.New("no candidates returned")}

			result := engine.Process(ctx, textRequest("moien"))

			Expect(result.Failed()).To(BeTrue())
			Expect(result.FailedStage).To(Equal(turn.StageComplete))
			Expect(result.Completion).To(ContainSubstring("no candidates returned"))
			Expect(synthesizer.calls).To(BeZero())
		})
	})

	Context("when synthesis degrades", func() {
		It("absorbs synthesis errors and still reports success", func() {
			synthesizer.audio = ""
			synthesizer.err = &tts.SynthesisError{Err: errors.New("piper failed (status 503)")}

			result := engine.Process(ctx, textRequest("moien"))

			Expect(result.Failed()).To(BeFalse())
			Expect(result.AudioBase64).To(BeNil())
			Expect(result.Completion).To(Equal(completer.reply))
			Expect(result.StageErrors).To(HaveLen(1))
			Expect(result.StageErrors[0].Stage).To(Equal(turn.StageSynthesize))
		})

		It("treats an empty synthesis payload as valid with no stage error", func() {
			synthesizer.audio = ""

			result := engine.Process(ctx, textRequest("moien"))

			Expect(result.Failed()).To(BeFalse())
			Expect(result.AudioBase64).To(BeNil())
			Expect(result.StageErrors).To(BeEmpty())
		})

		It("skips synthesis entirely for an empty speech segment", func() {
			completer.reply = "Question suivante DE : Und du?"

			result := engine.Process(ctx, textRequest("moien"))

			Expect(synthesizer.calls).To(BeZero())
			Expect(result.SpeechSegment).To(Equal(""))
			Expect(result.AudioBase64).To(BeNil())
			Expect(result.Failed()).To(BeFalse())
		})

		It("runs without a synthesizer when TTS is disabled", func() {
			engine = pipeline.New(transcriber, completer, nil)

			result := engine.Process(ctx, textRequest("moien"))

			Expect(result.Failed()).To(BeFalse())
			Expect(result.AudioBase64).To(BeNil())
			Expect(result.Completion).To(Equal(completer.reply))
		})
	})
})
