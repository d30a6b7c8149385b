// Package server exposes the relay pipeline over HTTP.
//
// The surface is a single route, POST /process_audio, accepting either a
// JSON body with a typed question or a multipart upload with a recorded
// audio clip, mirroring what the browser frontend sends. Swagger UI is
// mounted under /swagger/.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/luxvoice/schwaetzbot/internal/config"
	"github.com/luxvoice/schwaetzbot/internal/turn"
)

// maxRequestBytes caps uploads; browser recordings stay well below this.
const maxRequestBytes = 25 << 20

// Processor runs one turn through the relay pipeline.
type Processor interface {
	Process(ctx context.Context, req *turn.Request) *turn.Result
}

// Server serves the relay API.
type Server struct {
	port      int
	processor Processor
	router    chi.Router
	srv       *http.Server
}

// errorBody is the 400 response shape.
type errorBody struct {
	Error string `json:"error"`
}

// failureBody is the 500 response shape for terminal stage failures.
type failureBody struct {
	Message         string `json:"message"`
	TranscribedText string `json:"transcribed_text"`
	GeminiResponse  string `json:"gemini_response"`
}

// New creates a new Server routing requests to the given processor.
func New(cfg config.ServerConfig, processor Processor) *Server {
	s := &Server{
		port:      cfg.Port,
		processor: processor,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Post("/process_audio", s.handleProcessAudio)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.router = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Listen starts the HTTP server. It blocks until the context is cancelled
// and the server has drained.
func (s *Server) Listen(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close() error {
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// handleProcessAudio relays one utterance through the pipeline.
//
// @Summary     Relay one utterance through transcription, completion and synthesis
// @Description Accepts either a JSON body {"text": "..."} with a typed question, or multipart
// @Description form data with a recorded clip in the "audio" file field (optional "use_luxasr"
// @Description form field, default "true"). The utterance is transcribed if needed, answered by
// @Description the generative backend in Luxembourgish (German fallback), and the answer segment
// @Description is synthesized to speech.
// @Tags        relay
// @Accept      json
// @Accept      multipart/form-data
// @Produce     json
// @Success     200  {object}  turn.Result  "Transcription, raw reply and base64 audio (audio may be null)"
// @Failure     400  {object}  server.errorBody  "Neither text nor audio supplied, or unsupported routing flag"
// @Failure     500  {object}  server.failureBody  "Transcription or completion stage failed"
// @Router      /process_audio [post]
func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	req := &turn.Request{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
			return
		}
		req.Modality = turn.ModalityText
		req.Text = body.Text

	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid multipart form: " + err.Error()})
			return
		}

		file, header, err := r.FormFile("audio")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Type de contenu non supporté ou données manquantes"})
			return
		}
		defer file.Close()

		// The frontend historically routed audio between recognizers with
		// this flag; only the LuxASR path exists.
		useLuxASR := r.FormValue("use_luxasr")
		if useLuxASR == "" {
			useLuxASR = "true"
		}
		if useLuxASR != "true" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Audio reçu sans instructions claires ou langue non gérée par LuxASR."})
			return
		}

		audio, err := io.ReadAll(io.LimitReader(file, maxRequestBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "reading audio: " + err.Error()})
			return
		}

		req.Modality = turn.ModalityAudio
		req.Audio = audio
		req.Filename = header.Filename
		req.ContentType = header.Header.Get("Content-Type")

	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Type de contenu non supporté ou données manquantes"})
		return
	}

	result := s.processor.Process(r.Context(), req)

	if result.Failed() {
		slog.Error("turn failed", "request_id", req.ID, "stage", result.FailedStage)
		writeJSON(w, http.StatusInternalServerError, failureBody{
			Message:         fmt.Sprintf("pipeline failed at stage %q", result.FailedStage),
			TranscribedText: result.TranscribedText,
			GeminiResponse:  result.Completion,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
