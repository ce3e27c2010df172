package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
	"github.com/anatolykoptev/go_ytnotes/internal/engine/sources"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type stubFetcher struct {
	text  string
	err   error
	calls int
	ids   []string
	langs []string
}

func (s *stubFetcher) Fetch(_ context.Context, id string, langs []string) (string, error) {
	s.calls++
	s.ids = append(s.ids, id)
	s.langs = langs
	return s.text, s.err
}

type stubSummarizer struct {
	text  string
	err   error
	calls int
	got   string
}

func (s *stubSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	s.calls++
	s.got = transcript
	return s.text, s.err
}

type stubTranslator struct {
	err    error
	calls  int
	target engine.Language
}

func (s *stubTranslator) Translate(_ context.Context, text string, target engine.Language) (string, error) {
	s.calls++
	s.target = target
	if s.err != nil {
		return "", s.err
	}
	return "[" + target.Code + "] " + text, nil
}

type stubDescriber struct {
	meta sources.VideoMeta
	err  error
}

func (s stubDescriber) Describe(context.Context, string) (sources.VideoMeta, error) {
	return s.meta, s.err
}

type stubs struct {
	f *stubFetcher
	s *stubSummarizer
	t *stubTranslator
}

func newStubs() stubs {
	return stubs{
		f: &stubFetcher{text: "never gonna give you up"},
		s: &stubSummarizer{text: "A song about commitment."},
		t: &stubTranslator{},
	}
}

func (st stubs) pipeline(opts ...Option) *Pipeline {
	return New(st.f, st.s, st.t, opts...)
}

func TestRun_Happy(t *testing.T) {
	st := newStubs()
	out := st.pipeline().Run(context.Background(), Request{URL: watchURL, Language: "es"})

	require.True(t, out.OK(), "message: %s", out.Message)
	assert.Equal(t, KindNone, out.Kind)
	assert.Equal(t, "dQw4w9WgXcQ", out.Video.ID)
	assert.Equal(t, "A song about commitment.", out.Summary)
	assert.Equal(t, "[es] A song about commitment.", out.Text)
	assert.True(t, out.Translated)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, []State{StateIdle, StateNormalizing, StateFetching, StateSummarizing, StateTranslating, StateDone}, out.Trace)

	assert.Equal(t, []string{"dQw4w9WgXcQ"}, st.f.ids)
	assert.Equal(t, DefaultTranscriptLangs, st.f.langs)
	assert.Equal(t, "never gonna give you up", st.s.got)
	assert.Equal(t, "es", st.t.target.Code)
}

func TestRun_SameIDAcrossURLShapes(t *testing.T) {
	for _, raw := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
	} {
		st := newStubs()
		out := st.pipeline().Run(context.Background(), Request{URL: raw, Language: "en"})
		require.True(t, out.OK(), raw)
		assert.Equal(t, []string{"dQw4w9WgXcQ"}, st.f.ids, raw)
	}
}

func TestRun_InvalidURLMakesNoCalls(t *testing.T) {
	for _, raw := range []string{"", "not a link", "https://vimeo.com/123456", "https://www.youtube.com/watch?v=short"} {
		st := newStubs()
		out := st.pipeline().Run(context.Background(), Request{URL: raw, Language: "en"})

		assert.Equal(t, StateError, out.State, raw)
		assert.Equal(t, KindInvalidURL, out.Kind, raw)
		assert.Equal(t, Message(KindInvalidURL, ""), out.Message)
		assert.True(t, out.Video.IsZero())
		assert.Zero(t, st.f.calls, raw)
		assert.Zero(t, st.s.calls, raw)
		assert.Zero(t, st.t.calls, raw)
		assert.Equal(t, []State{StateIdle, StateNormalizing, StateError}, out.Trace)
	}
}

func TestRun_FetchFailures(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{"disabled", "", fmt.Errorf("%w: no captions", sources.ErrTranscriptsDisabled), KindTranscriptsDisabled, "Transcripts are disabled for this video."},
		{"not found", "", fmt.Errorf("%w: requested en", sources.ErrNoTranscriptFound), KindNoTranscriptFound, "No transcript is available for this video in the requested language."},
		{"unavailable", "", fmt.Errorf("%w: Private video", sources.ErrVideoUnavailable), KindVideoUnavailable, "This video is unavailable. It may be private or removed."},
		{"generic", "", errors.New("watch page: HTTP 429"), KindFetch, "Could not fetch the transcript: watch page: HTTP 429"},
		{"empty transcript", "  ", nil, KindFetch, "Could not fetch the transcript: transcript is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStubs()
			st.f.text, st.f.err = tt.text, tt.err
			out := st.pipeline().Run(context.Background(), Request{URL: watchURL, Language: "fr"})

			assert.Equal(t, StateError, out.State)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantMsg, out.Message)
			assert.Equal(t, 1, st.f.calls)
			assert.Zero(t, st.s.calls, "summarizer must not run")
			assert.Zero(t, st.t.calls, "translator must not run")
			assert.Equal(t, []State{StateIdle, StateNormalizing, StateFetching, StateError}, out.Trace)
		})
	}
}

func TestRun_SummarizerFailureSkipsTranslation(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		st := newStubs()
		st.s.err = errors.New("summarize: 429 quota exceeded")
		out := st.pipeline().Run(context.Background(), Request{URL: watchURL, Language: "de"})

		assert.Equal(t, KindSummarization, out.Kind)
		assert.Equal(t, "Summarization failed: summarize: 429 quota exceeded", out.Message)
		assert.Zero(t, st.t.calls)
		assert.Empty(t, out.Text)
	})
	t.Run("empty", func(t *testing.T) {
		st := newStubs()
		st.s.text = "\n"
		out := st.pipeline().Run(context.Background(), Request{URL: watchURL, Language: "de"})

		assert.Equal(t, KindSummarization, out.Kind)
		assert.Equal(t, "Summarization failed: empty summary", out.Message)
		assert.Zero(t, st.t.calls)
		assert.Equal(t, []State{StateIdle, StateNormalizing, StateFetching, StateSummarizing, StateError}, out.Trace)
	})
}

func TestRun_TranslationFailureKeepsSummary(t *testing.T) {
	st := newStubs()
	st.t.err = errors.New("google translate: HTTP 503")
	out := st.pipeline().Run(context.Background(), Request{URL: watchURL, Language: "ja"})

	require.True(t, out.OK())
	assert.Equal(t, KindNone, out.Kind)
	assert.Equal(t, out.Summary, out.Text)
	assert.False(t, out.Translated)
	assert.Equal(t, "Translation failed, showing the original summary: google translate: HTTP 503", out.Warning())
	assert.Equal(t, StateDone, out.Trace[len(out.Trace)-1])
}

func TestRun_Idempotent(t *testing.T) {
	st := newStubs()
	p := st.pipeline()
	req := Request{URL: watchURL, Language: "Italian"}

	first := p.Run(context.Background(), req)
	second := p.Run(context.Background(), req)
	assert.Equal(t, first, second)
	assert.Equal(t, "it", first.Language.Code)
}

func TestRun_Language(t *testing.T) {
	tests := []struct {
		sel      string
		wantCode string
		wantWarn bool
	}{
		{"", "en", false},
		{"te", "te", false},
		{"Kannada", "kn", false},
		{"CHINESE", "zh", false},
		{"klingon", "en", true},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			st := newStubs()
			out := st.pipeline().Run(context.Background(), Request{URL: watchURL, Language: tt.sel})
			require.True(t, out.OK())
			assert.Equal(t, tt.wantCode, st.t.target.Code)
			assert.Equal(t, tt.wantWarn, len(out.Warnings) > 0)
		})
	}
}

func TestRun_Describer(t *testing.T) {
	t.Run("attached", func(t *testing.T) {
		st := newStubs()
		meta := sources.VideoMeta{ID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up"}
		out := st.pipeline(WithDescriber(stubDescriber{meta: meta})).Run(context.Background(), Request{URL: watchURL})
		require.True(t, out.OK())
		require.NotNil(t, out.Meta)
		assert.Equal(t, "Never Gonna Give You Up", out.Meta.Title)
	})
	t.Run("failure ignored", func(t *testing.T) {
		st := newStubs()
		out := st.pipeline(WithDescriber(stubDescriber{err: errors.New("quota")})).Run(context.Background(), Request{URL: watchURL})
		require.True(t, out.OK())
		assert.Nil(t, out.Meta)
		assert.Empty(t, out.Warnings)
	})
}

func TestRun_IgnoresCallerCancellation(t *testing.T) {
	st := newStubs()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	f := fetcherFunc(func(ctx context.Context, _ string, _ []string) (string, error) {
		sawErr = ctx.Err()
		return "transcript", nil
	})
	out := New(f, st.s, st.t).Run(ctx, Request{URL: watchURL})
	require.True(t, out.OK())
	assert.NoError(t, sawErr)
}

func TestRun_PerCallTimeout(t *testing.T) {
	st := newStubs()
	f := fetcherFunc(func(ctx context.Context, _ string, _ []string) (string, error) {
		<-ctx.Done()
		return "", fmt.Errorf("watch page: %w", ctx.Err())
	})
	out := New(f, st.s, st.t, WithTimeout(20*time.Millisecond)).Run(context.Background(), Request{URL: watchURL})
	assert.Equal(t, KindFetch, out.Kind)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestRun_Serialized(t *testing.T) {
	var active, maxActive int
	var mu sync.Mutex
	f := fetcherFunc(func(context.Context, string, []string) (string, error) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return "transcript", nil
	})
	p := New(f, &stubSummarizer{text: "s"}, &stubTranslator{})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(context.Background(), Request{URL: watchURL})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

type fetcherFunc func(ctx context.Context, id string, langs []string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, id string, langs []string) (string, error) {
	return f(ctx, id, langs)
}
