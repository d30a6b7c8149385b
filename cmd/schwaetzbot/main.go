// Schwaetzbot is a voice-assistant relay daemon for Luxembourgish speakers.
// It relays a typed or spoken question through LuxASR (speech recognition),
// a generative-language backend, and Piper (speech synthesis), returning a
// spoken, language-tagged reply.
//
// Usage:
//
//	schwaetzbot [flags]
//	schwaetzbot --config /path/to/schwaetzbot.yaml
//
// @title       schwaetzbot API
// @version     1.0
// @description Luxembourgish voice-assistant relay: LuxASR transcription, generative completion, Piper speech synthesis.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/luxvoice/schwaetzbot/docs"
	"github.com/luxvoice/schwaetzbot/internal/asr/luxasr"
	"github.com/luxvoice/schwaetzbot/internal/config"
	"github.com/luxvoice/schwaetzbot/internal/health"
	"github.com/luxvoice/schwaetzbot/internal/llm"
	"github.com/luxvoice/schwaetzbot/internal/llm/gemini"
	"github.com/luxvoice/schwaetzbot/internal/llm/openaichat"
	"github.com/luxvoice/schwaetzbot/internal/pipeline"
	"github.com/luxvoice/schwaetzbot/internal/server"
	"github.com/luxvoice/schwaetzbot/internal/tts"
	"github.com/luxvoice/schwaetzbot/internal/tts/piper"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/schwaetzbot.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("schwaetzbot %s\n", version)
		os.Exit(0)
	}

	// Local deployments keep the Gemini credential in a .env file.
	_ = godotenv.Load()

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("schwaetzbot starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the generative-language backend.
	var completer llm.Completer
	switch {
	case !cfg.LLM.Enabled:
		completer = llm.NewDisabled()
		slog.Warn("generative backend disabled, serving maintenance message")
	case cfg.LLM.Backend == "openai":
		completer = openaichat.New(cfg.LLM.OpenAI)
		slog.Info("using OpenAI completion backend", "model", cfg.LLM.OpenAI.Model)
	default:
		completer = gemini.New(cfg.LLM.Gemini)
		slog.Info("using Gemini completion backend", "model", cfg.LLM.Gemini.Model)
	}
	defer completer.Close()

	// Initialize the transcription and synthesis adapters.
	transcriber := luxasr.New(cfg.ASR)
	defer transcriber.Close()
	slog.Info("using LuxASR transcriber", "endpoint", cfg.ASR.Endpoint)

	var synthesizer tts.Synthesizer
	if cfg.TTS.Enabled {
		p := piper.New(cfg.TTS)
		defer p.Close()
		synthesizer = p
		slog.Info("using Piper synthesizer", "endpoint", cfg.TTS.Endpoint)
	} else {
		slog.Warn("speech synthesis disabled, replies will be text-only")
	}

	// Create the relay engine and the HTTP surface.
	engine := pipeline.New(transcriber, completer, synthesizer)
	srv := server.New(cfg.Server, engine)

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	healthServer.SetReady(true)
	slog.Info("schwaetzbot ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	// Block serving requests until shutdown signal.
	if err := srv.Listen(ctx); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("schwaetzbot stopped")
}
