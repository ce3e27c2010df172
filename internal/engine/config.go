package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	WebPort            string
	MCPPort            string
	LLMAPIKey          string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	CallTimeout        time.Duration // per external call
	TranscriptLangs    []string      // caption language preference, empty = any
	MaxTranscriptChars int           // rune cap before summarization, 0 = no cap
	TranslateBackend   string        // "google" or "llm"
	SubtitleFallback   bool
	YtDlpPath          string
	YouTubeAPIKey      string // empty = metadata lookup disabled
	OpenBrowser        bool
	LogLevel           string
	HTTPClient         *http.Client
}

// Translator backends.
const (
	TranslateGoogle = "google"
	TranslateLLM    = "llm"
)

// DefaultCallTimeout bounds a single call to an external service.
const DefaultCallTimeout = 30 * time.Second

// Validate reports configuration that makes the process unable to serve requests.
func (c Config) Validate() error {
	if c.LLMAPIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.TranslateBackend {
	case TranslateGoogle, TranslateLLM:
	default:
		return &ConfigError{Field: "TRANSLATE_BACKEND", Value: c.TranslateBackend}
	}
	return nil
}

// Timeout returns the per-call timeout, falling back to DefaultCallTimeout.
func (c Config) Timeout() time.Duration {
	if c.CallTimeout <= 0 {
		return DefaultCallTimeout
	}
	return c.CallTimeout
}
