package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LLM is the single completion call the engine needs from a generative-text backend.
type LLM interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLMFunc adapts a plain function (typically a closure over a go-kit llm client) to LLM.
type LLMFunc func(ctx context.Context, system, prompt string) (string, error)

// Complete calls f.
func (f LLMFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// callLLM sends one request and keeps the LLM counters current.
func callLLM(ctx context.Context, c LLM, system, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := c.Complete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return resp, nil
}

// Summarizer turns a transcript into a short summary with a fixed instruction.
type Summarizer struct {
	llm         LLM
	instruction string
	maxChars    int
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithMaxTranscriptChars caps the transcript at n runes before it is sent. 0 = no cap.
func WithMaxTranscriptChars(n int) SummarizerOption {
	return func(s *Summarizer) { s.maxChars = n }
}

// WithInstruction replaces SummaryPrompt.
func WithInstruction(instruction string) SummarizerOption {
	return func(s *Summarizer) { s.instruction = instruction }
}

// NewSummarizer creates a Summarizer backed by c.
func NewSummarizer(c LLM, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{llm: c, instruction: SummaryPrompt}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize sends instruction+transcript as one prompt and returns the backend text verbatim.
// There is no retry; a backend error is returned with its detail.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if s.maxChars > 0 {
		if n := len([]rune(transcript)); n > s.maxChars {
			slog.Debug("summarize: transcript capped", slog.Int("runes", n), slog.Int("max", s.maxChars))
			transcript = TruncateRunes(transcript, s.maxChars, "...")
		}
	}
	out, err := callLLM(ctx, s.llm, "", s.instruction+transcript)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}
