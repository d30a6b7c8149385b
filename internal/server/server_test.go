package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxvoice/schwaetzbot/internal/config"
	"github.com/luxvoice/schwaetzbot/internal/server"
	"github.com/luxvoice/schwaetzbot/internal/turn"
)

// fakeProcessor records the request it received and returns a canned result.
type fakeProcessor struct {
	result *turn.Result
	calls  int
	gotReq *turn.Request
}

func (f *fakeProcessor) Process(ctx context.Context, req *turn.Request) *turn.Result {
	f.calls++
	f.gotReq = req
	if f.result != nil {
		return f.result
	}
	return &turn.Result{RequestID: req.ID}
}

func multipartBody(fields map[string]string, fileField, filename, fileType string, fileContent []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if fileField != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", fileType)
		part, _ := w.CreatePart(hdr)
		_, _ = part.Write(fileContent)
	}
	w.Close()
	return body, w.FormDataContentType()
}

var _ = Describe("POST /process_audio", func() {
	var (
		processor *fakeProcessor
		handler   http.Handler
	)

	BeforeEach(func() {
		processor = &fakeProcessor{}
		srv := server.New(config.ServerConfig{Port: 0, AllowedOrigins: []string{"*"}}, processor)
		handler = srv.Handler()
	})

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Context("with a JSON body", func() {
		It("runs a text turn and returns the wire shape with null audio", func() {
			processor.result = &turn.Result{
				TranscribedText: "Wéi geet et dir?",
				Completion:      "LU : Mir geet et gutt. Question suivante LU : A dir?",
			}

			req := httptest.NewRequest(http.MethodPost, "/process_audio",
				strings.NewReader(`{"text": "Wéi geet et dir?"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(processor.gotReq.Modality).To(Equal(turn.ModalityText))
			Expect(processor.gotReq.Text).To(Equal("Wéi geet et dir?"))
			Expect(processor.gotReq.ID).NotTo(BeEmpty())

			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("transcribed_text", "Wéi geet et dir?"))
			Expect(body).To(HaveKeyWithValue("gemini_response", "LU : Mir geet et gutt. Question suivante LU : A dir?"))
			Expect(body).To(HaveKey("audio_response_base64"))
			Expect(body["audio_response_base64"]).To(BeNil())
		})

		It("returns the audio payload when synthesis succeeded", func() {
			result := &turn.Result{TranscribedText: "moien", Completion: "LU : Moien!"}
			result.SetAudio("UklGRg==")
			processor.result = result

			req := httptest.NewRequest(http.MethodPost, "/process_audio",
				strings.NewReader(`{"text": "moien"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("audio_response_base64", "UklGRg=="))
		})

		It("rejects malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/process_audio",
				strings.NewReader(`{"text": `))
			req.Header.Set("Content-Type", "application/json")
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)).To(HaveKey("error"))
			Expect(processor.calls).To(BeZero())
		})
	})

	Context("with a multipart upload", func() {
		It("runs an audio turn with the uploaded file", func() {
			body, contentType := multipartBody(nil, "audio", "clip.wav", "audio/wav", []byte("RIFFfake"))
			req := httptest.NewRequest(http.MethodPost, "/process_audio", body)
			req.Header.Set("Content-Type", contentType)
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(processor.gotReq.Modality).To(Equal(turn.ModalityAudio))
			Expect(processor.gotReq.Audio).To(Equal([]byte("RIFFfake")))
			Expect(processor.gotReq.Filename).To(Equal("clip.wav"))
			Expect(processor.gotReq.ContentType).To(Equal("audio/wav"))
		})

		It("accepts an explicit use_luxasr=true", func() {
			body, contentType := multipartBody(map[string]string{"use_luxasr": "true"},
				"audio", "clip.wav", "audio/wav", []byte("RIFFfake"))
			req := httptest.NewRequest(http.MethodPost, "/process_audio", body)
			req.Header.Set("Content-Type", contentType)

			Expect(do(req).Code).To(Equal(http.StatusOK))
		})

		It("rejects any other routing flag value", func() {
			body, contentType := multipartBody(map[string]string{"use_luxasr": "false"},
				"audio", "clip.wav", "audio/wav", []byte("RIFFfake"))
			req := httptest.NewRequest(http.MethodPost, "/process_audio", body)
			req.Header.Set("Content-Type", contentType)
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)).To(HaveKey("error"))
			Expect(processor.calls).To(BeZero())
		})

		It("rejects multipart forms without an audio file", func() {
			body, contentType := multipartBody(map[string]string{"use_luxasr": "true"}, "", "", "", nil)
			req := httptest.NewRequest(http.MethodPost, "/process_audio", body)
			req.Header.Set("Content-Type", contentType)
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)).To(HaveKey("error"))
		})
	})

	Context("with neither JSON nor audio", func() {
		It("returns 400 with an error field", func() {
			req := httptest.NewRequest(http.MethodPost, "/process_audio", strings.NewReader("hello"))
			req.Header.Set("Content-Type", "text/plain")
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)).To(HaveKey("error"))
			Expect(processor.calls).To(BeZero())
		})
	})

	Context("when the pipeline fails terminally", func() {
		It("returns 500 naming the failed stage", func() {
			processor.result = &turn.Result{
				TranscribedText: "Erreur de transcription LuxASR.",
				Completion:      "Désolé, je n'ai pas pu transcrire votre demande en raison d'une erreur LuxASR : status 502",
				FailedStage:     turn.StageTranscribe,
			}

			body, contentType := multipartBody(nil, "audio", "clip.wav", "audio/wav", []byte("RIFFfake"))
			req := httptest.NewRequest(http.MethodPost, "/process_audio", body)
			req.Header.Set("Content-Type", contentType)
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			resp := decode(rec)
			Expect(resp["message"]).To(ContainSubstring("transcribe"))
			Expect(resp).To(HaveKeyWithValue("transcribed_text", "Erreur de transcription LuxASR."))
			Expect(resp["gemini_response"]).To(ContainSubstring("status 502"))
		})
	})
})
