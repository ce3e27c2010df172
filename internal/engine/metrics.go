package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PipelineRuns       atomic.Int64
	PipelineErrors     atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	SubtitleFallbacks  atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	TranslateRequests  atomic.Int64
	TranslateErrors    atomic.Int64
	MetadataRequests   atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"pipeline_runs", "pipeline_errors",
	"transcript_requests", "transcript_errors", "subtitle_fallbacks",
	"llm_calls", "llm_errors",
	"translate_requests", "translate_errors",
	"metadata_requests",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"pipeline_runs":       metrics.PipelineRuns.Load(),
		"pipeline_errors":     metrics.PipelineErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"subtitle_fallbacks":  metrics.SubtitleFallbacks.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"translate_requests":  metrics.TranslateRequests.Load(),
		"translate_errors":    metrics.TranslateErrors.Load(),
		"metadata_requests":   metrics.MetadataRequests.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources/ sub-package and the orchestrator.
func IncrPipelineRun()       { metrics.PipelineRuns.Add(1) }
func IncrPipelineError()     { metrics.PipelineErrors.Add(1) }
func IncrTranscriptRequest() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptError()   { metrics.TranscriptErrors.Add(1) }
func IncrSubtitleFallback()  { metrics.SubtitleFallbacks.Add(1) }
func IncrMetadataRequest()   { metrics.MetadataRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 10*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
