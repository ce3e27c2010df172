// Package app loads configuration and assembles the notes pipeline for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
	"github.com/anatolykoptev/go_ytnotes/internal/engine/sources"
	"github.com/anatolykoptev/go_ytnotes/internal/notes"
)

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() engine.Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	c := engine.Config{
		WebPort:            env.Str("WEB_PORT", "8501"),
		MCPPort:            env.Str("MCP_PORT", "8892"),
		LLMAPIKey:          env.Str("LLM_API_KEY", env.Str("GOOGLE_API_KEY", "")),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 2048),
		CallTimeout:        env.Duration("CALL_TIMEOUT", engine.DefaultCallTimeout),
		TranscriptLangs:    env.List("TRANSCRIPT_LANGS", "en"),
		MaxTranscriptChars: env.Int("MAX_TRANSCRIPT_CHARS", 60000),
		TranslateBackend:   strings.ToLower(env.Str("TRANSLATE_BACKEND", engine.TranslateGoogle)),
		SubtitleFallback:   envBool("SUBTITLE_FALLBACK", true),
		YtDlpPath:          env.Str("YTDLP_PATH", "yt-dlp"),
		YouTubeAPIKey:      env.Str("YOUTUBE_API_KEY", ""),
		OpenBrowser:        envBool("OPEN_BROWSER", false),
		LogLevel:           env.Str("LOG_LEVEL", "info"),
	}
	c.HTTPClient = &http.Client{
		Timeout: clientTimeout(c),
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	return c
}

// clientTimeout backs up the per-call context deadline at the transport level.
func clientTimeout(c engine.Config) time.Duration {
	return c.Timeout() + 5*time.Second
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

// LogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func LogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLLM wraps a go-kit llm client as engine.LLM.
func NewLLM(c engine.Config) engine.LLM {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: clientTimeout(c)}),
	)
	return engine.LLMFunc(func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt)
	})
}

// NewTranslator returns the backend selected by TRANSLATE_BACKEND.
func NewTranslator(c engine.Config, model engine.LLM) (notes.Translator, error) {
	switch c.TranslateBackend {
	case engine.TranslateGoogle:
		return engine.NewGoogleTranslator(c.HTTPClient, ""), nil
	case engine.TranslateLLM:
		return engine.NewLLMTranslator(model), nil
	}
	return nil, &engine.ConfigError{Field: "TRANSLATE_BACKEND", Value: c.TranslateBackend}
}

// NewFetcher builds the transcript fetcher, enabling yt-dlp when it resolves.
func NewFetcher(c engine.Config) *sources.TranscriptFetcher {
	var opts []sources.FetcherOption
	if c.SubtitleFallback {
		if y, err := sources.LookupYtDlp(c.YtDlpPath); err != nil {
			slog.Info("subtitle fallback disabled", slog.Any("error", err))
		} else {
			opts = append(opts, sources.WithSubtitleSource(y))
			slog.Info("subtitle fallback enabled", slog.String("path", c.YtDlpPath))
		}
	}
	return sources.NewTranscriptFetcher(c.HTTPClient, opts...)
}

// NewPipeline validates c and wires every client into a notes.Pipeline.
func NewPipeline(ctx context.Context, c engine.Config) (*notes.Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	model := NewLLM(c)
	translator, err := NewTranslator(c, model)
	if err != nil {
		return nil, err
	}
	summarizer := engine.NewSummarizer(model, engine.WithMaxTranscriptChars(c.MaxTranscriptChars))

	opts := []notes.Option{
		notes.WithTimeout(c.Timeout()),
		notes.WithTranscriptLangs(c.TranscriptLangs),
	}
	if c.YouTubeAPIKey != "" {
		d, err := sources.NewDescriber(ctx, c.YouTubeAPIKey)
		if err != nil {
			slog.Warn("metadata lookup disabled", slog.Any("error", err))
		} else {
			opts = append(opts, notes.WithDescriber(d))
		}
	}

	slog.Info("pipeline ready",
		slog.String("model", c.LLMModel),
		slog.String("translate", c.TranslateBackend),
		slog.Any("transcript_langs", c.TranscriptLangs),
	)
	return notes.New(NewFetcher(c), summarizer, translator, opts...), nil
}
