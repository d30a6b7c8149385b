// Package config handles loading and validating the schwaetzbot configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the schwaetzbot daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	ASR     ASRConfig     `mapstructure:"asr"`
	LLM     LLMConfig     `mapstructure:"llm"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	HealthPort     int      `mapstructure:"health_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ASRConfig configures the LuxASR transcription service.
type ASRConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Diarization  string `mapstructure:"diarization"`
	OutputFormat string `mapstructure:"output_format"`

	// ResponseFields is the priority order of JSON fields to read the
	// transcript from. The deployed LuxASR versions have not agreed on a
	// field name, so the first field yielding text wins. "segments" means
	// a list of {"text": ...} objects joined with spaces.
	ResponseFields []string `mapstructure:"response_fields"`
}

// LLMConfig selects and configures the generative-language backend.
type LLMConfig struct {
	// Backend is "gemini" (default) or "openai".
	Backend string `mapstructure:"backend"`

	// Enabled gates the completion stage. When false, no network call is
	// made and a fixed maintenance message is served instead.
	Enabled bool `mapstructure:"enabled"`

	Gemini GeminiConfig `mapstructure:"gemini"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Generative Language API settings.
type GeminiConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// OpenAIConfig holds OpenAI chat completion settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// TTSConfig configures the Piper speech synthesis service.
type TTSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./schwaetzbot.yaml, ./configs/schwaetzbot.yaml,
// /etc/schwaetzbot/schwaetzbot.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("asr.endpoint", "https://luxasr.uni.lu/v2/asr")
	v.SetDefault("asr.diarization", "Disabled")
	v.SetDefault("asr.output_format", "json")
	v.SetDefault("asr.response_fields", []string{"text", "recognized_text", "segments"})
	v.SetDefault("llm.backend", "gemini")
	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	v.SetDefault("llm.gemini.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.endpoint", "https://mbarnig-rhasspy-piper-lu-streaming.hf.space/run/predict")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("schwaetzbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/schwaetzbot")
	}

	// Environment variables: SCHWAETZBOT_SERVER_PORT, SCHWAETZBOT_LLM_ENABLED, etc.
	v.SetEnvPrefix("SCHWAETZBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.LLM.Gemini.APIKey = resolveEnvRef(cfg.LLM.Gemini.APIKey)
	cfg.LLM.OpenAI.APIKey = resolveEnvRef(cfg.LLM.OpenAI.APIKey)

	return &cfg, nil
}

// Validate checks that the configuration can actually start the daemon.
// A missing credential for the selected generative backend is fatal.
func (c *Config) Validate() error {
	switch c.LLM.Backend {
	case "gemini":
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required (set GEMINI_API_KEY)")
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("llm.openai.api_key is required (set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown llm backend %q", c.LLM.Backend)
	}
	if c.ASR.Endpoint == "" {
		return fmt.Errorf("asr.endpoint is required")
	}
	if c.TTS.Enabled && c.TTS.Endpoint == "" {
		return fmt.Errorf("tts.endpoint is required when tts is enabled")
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env
// var value. Unresolved references collapse to the empty string so that
// Validate can report the missing credential by name.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
