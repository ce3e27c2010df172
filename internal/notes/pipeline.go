// Package notes runs one request through the link → transcript → summary →
// translation chain and reports a single terminal outcome.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
	"github.com/anatolykoptev/go_ytnotes/internal/engine/sources"
)

// State is a step of a run.
type State int

const (
	StateIdle State = iota
	StateNormalizing
	StateFetching
	StateSummarizing
	StateTranslating
	StateDone
	StateError
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateNormalizing: "normalizing",
	StateFetching:    "fetching",
	StateSummarizing: "summarizing",
	StateTranslating: "translating",
	StateDone:        "done",
	StateError:       "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Fetcher returns the plain transcript of a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string, langs []string) (string, error)
}

// Summarizer condenses a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text string, target engine.Language) (string, error)
}

// Describer looks up display metadata. Optional.
type Describer interface {
	Describe(ctx context.Context, videoID string) (sources.VideoMeta, error)
}

// Request is one user submission. Language is a code or display name.
type Request struct {
	URL      string
	Language string
}

// Outcome is the terminal result of a run: State is StateDone or StateError.
type Outcome struct {
	State   State
	Kind    Kind   // KindNone when State == StateDone
	Message string // user-facing error text when State == StateError
	Err     error  // underlying error, for logs

	Video    sources.VideoRef
	Meta     *sources.VideoMeta
	Language engine.Language

	Summary    string
	Text       string // translated summary, or Summary when translation failed
	Translated bool
	Warnings   []string

	Trace []State
}

// OK reports whether the run reached StateDone.
func (o Outcome) OK() bool { return o.State == StateDone }

// Warning joins the non-fatal warnings into one line.
func (o Outcome) Warning() string { return strings.Join(o.Warnings, " ") }

// DefaultTranscriptLangs are the caption languages asked for when none are configured.
var DefaultTranscriptLangs = []string{"en"}

// Pipeline drives runs one at a time.
type Pipeline struct {
	mu sync.Mutex

	fetcher    Fetcher
	summarizer Summarizer
	translator Translator
	describer  Describer

	timeout time.Duration
	langs   []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds each external call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTranscriptLangs sets the preferred caption languages.
func WithTranscriptLangs(langs []string) Option {
	return func(p *Pipeline) { p.langs = langs }
}

// WithDescriber enables the metadata lookup.
func WithDescriber(d Describer) Option {
	return func(p *Pipeline) { p.describer = d }
}

// New creates a Pipeline over the three clients.
func New(f Fetcher, s Summarizer, t Translator, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:    f,
		summarizer: s,
		translator: t,
		timeout:    engine.DefaultCallTimeout,
		langs:      DefaultTranscriptLangs,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run executes one request to completion. Runs are serialized, and once started a
// run ignores cancellation of ctx; each external call has its own timeout instead.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	engine.IncrPipelineRun()
	r := &run{p: p, ctx: context.WithoutCancel(ctx)}
	out := r.execute(req)
	if out.State == StateError {
		engine.IncrPipelineError()
		slog.Info("notes: run failed",
			slog.String("kind", out.Kind.String()), slog.String("video", out.Video.ID), slog.Any("error", out.Err))
	}
	return out
}

// run carries the state of a single execution.
type run struct {
	p   *Pipeline
	ctx context.Context
	out Outcome
}

func (r *run) enter(s State) {
	r.out.State = s
	r.out.Trace = append(r.out.Trace, s)
	slog.Debug("notes: state", slog.String("state", s.String()), slog.String("video", r.out.Video.ID))
}

func (r *run) fail(kind Kind, err error) Outcome {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	r.out.Kind = kind
	r.out.Err = err
	r.out.Message = Message(kind, detail)
	r.enter(StateError)
	return r.out
}

func (r *run) execute(req Request) Outcome {
	r.enter(StateIdle)
	r.out.Language = r.resolveLanguage(req.Language)

	r.enter(StateNormalizing)
	ref, ok := sources.ParseVideoURL(req.URL)
	if !ok {
		return r.fail(KindInvalidURL, nil)
	}
	r.out.Video = ref
	r.describe()

	r.enter(StateFetching)
	var transcript string
	err := r.call("fetch", func(ctx context.Context) (err error) {
		transcript, err = r.p.fetcher.Fetch(ctx, ref.ID, r.p.langs)
		return err
	})
	if err != nil {
		return r.fail(fetchKind(err), err)
	}
	if strings.TrimSpace(transcript) == "" {
		return r.fail(KindFetch, errors.New("transcript is empty"))
	}

	r.enter(StateSummarizing)
	var summary string
	err = r.call("summarize", func(ctx context.Context) (err error) {
		summary, err = r.p.summarizer.Summarize(ctx, transcript)
		return err
	})
	if err != nil {
		return r.fail(KindSummarization, err)
	}
	if strings.TrimSpace(summary) == "" {
		return r.fail(KindSummarization, errors.New("empty summary"))
	}
	r.out.Summary = summary

	r.enter(StateTranslating)
	var translated string
	err = r.call("translate", func(ctx context.Context) (err error) {
		translated, err = r.p.translator.Translate(ctx, summary, r.out.Language)
		return err
	})
	switch {
	case err != nil:
		slog.Warn("notes: translation failed, keeping summary",
			slog.String("video", ref.ID), slog.String("lang", r.out.Language.Code), slog.Any("error", err))
		r.warn(Message(KindTranslation, err.Error()))
		r.out.Text = summary
	case strings.TrimSpace(translated) == "":
		r.warn(Message(KindTranslation, "empty translation"))
		r.out.Text = summary
	default:
		r.out.Text = translated
		r.out.Translated = true
	}

	r.enter(StateDone)
	return r.out
}

// call runs fn under a fresh per-call timeout.
func (r *run) call(name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(r.ctx, r.p.timeout)
	defer cancel()
	return engine.TrackOperation(ctx, name, fn)
}

func (r *run) warn(msg string) {
	r.out.Warnings = append(r.out.Warnings, msg)
}

// resolveLanguage maps a code or name onto the closed set. Empty means English.
func (r *run) resolveLanguage(sel string) engine.Language {
	if strings.TrimSpace(sel) == "" {
		return engine.DefaultLanguage
	}
	if lang, ok := engine.LookupLanguage(sel); ok {
		return lang
	}
	r.warn(fmt.Sprintf("Unknown language %q, using %s.", sel, engine.DefaultLanguage.Name))
	return engine.DefaultLanguage
}

// describe attaches metadata when a Describer is configured. Failures are only logged.
func (r *run) describe() {
	if r.p.describer == nil {
		return
	}
	var meta sources.VideoMeta
	err := r.call("describe", func(ctx context.Context) (err error) {
		meta, err = r.p.describer.Describe(ctx, r.out.Video.ID)
		return err
	})
	if err != nil {
		slog.Warn("notes: metadata lookup failed", slog.String("video", r.out.Video.ID), slog.Any("error", err))
		return
	}
	r.out.Meta = &meta
}

func fetchKind(err error) Kind {
	switch {
	case errors.Is(err, sources.ErrTranscriptsDisabled):
		return KindTranscriptsDisabled
	case errors.Is(err, sources.ErrNoTranscriptFound):
		return KindNoTranscriptFound
	case errors.Is(err, sources.ErrVideoUnavailable):
		return KindVideoUnavailable
	}
	return KindFetch
}
