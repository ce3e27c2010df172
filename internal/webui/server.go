// Package webui serves the single-page form: paste a link, pick a language, get notes.
package webui

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
	"github.com/anatolykoptev/go_ytnotes/internal/engine/sources"
	"github.com/anatolykoptev/go_ytnotes/internal/notes"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// maxFormBytes bounds the POST body; a URL and a language code fit easily.
const maxFormBytes = 16 << 10

// Runner executes one request. *notes.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req notes.Request) notes.Outcome
}

// Server renders the form and runs the pipeline on submit.
type Server struct {
	runner  Runner
	metrics func() string
}

// New creates a Server. metrics may be nil.
func New(r Runner, metrics func() string) *Server {
	return &Server{runner: r, metrics: metrics}
}

// view is the template data.
type view struct {
	Languages []engine.Language
	URL       string
	Selected  string

	Thumbnail string
	Title     string
	Channel   string
	Duration  string

	Text    string
	Warning string
	Error   string
}

func newView(rawURL, lang string) view {
	if lang == "" {
		lang = engine.DefaultLanguage.Code
	}
	return view{Languages: engine.Languages, URL: rawURL, Selected: lang}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if s.metrics != nil {
			fmt.Fprint(w, s.metrics())
		}
	})
	return mux
}

// handleForm renders the empty form. A ?url= query pre-fills it and previews the thumbnail.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := newView(q.Get("url"), q.Get("language"))
	if ref, ok := sources.ParseVideoURL(v.URL); ok {
		v.Thumbnail = ref.ThumbnailURL()
	}
	s.render(w, http.StatusOK, v)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	v := newView(r.PostForm.Get("url"), r.PostForm.Get("language"))

	out := s.runner.Run(r.Context(), notes.Request{URL: v.URL, Language: v.Selected})

	if !out.Video.IsZero() {
		v.Thumbnail = out.Video.ThumbnailURL()
	}
	if m := out.Meta; m != nil {
		v.Title = m.Title
		v.Channel = m.Channel
		if m.Duration > 0 {
			v.Duration = m.Duration.Round(time.Second).String()
		}
	}
	v.Selected = out.Language.Code
	if out.OK() {
		v.Text = out.Text
		v.Warning = out.Warning()
	} else {
		v.Error = out.Message
		v.Warning = out.Warning()
	}
	s.render(w, http.StatusOK, v)
}

func (s *Server) render(w http.ResponseWriter, status int, v view) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, v); err != nil {
		slog.Error("webui: render failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web form listening", slog.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	return nil
}
