package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → captionTracks → timedtext XML
// Second:   ANDROID Innertube /player → captionTracks (only when the page cannot be scraped)
// Fallback: SubtitleSource (yt-dlp) when the video reports no usable transcript

// Failure taxonomy. Fetch wraps these with detail; check with errors.Is.
var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found for the requested languages")
	ErrVideoUnavailable    = errors.New("video is unavailable")
)

// errScrape marks a watch page that loaded but held no usable player response.
var errScrape = errors.New("watch page scrape")

// TranscriptFetcher fetches the plain-text transcript of a video.
type TranscriptFetcher struct {
	client    *http.Client
	watchURL  string
	playerURL string
	subtitles SubtitleSource
}

// FetcherOption configures a TranscriptFetcher.
type FetcherOption func(*TranscriptFetcher)

// WithWatchURL overrides the watch page base URL.
func WithWatchURL(u string) FetcherOption {
	return func(f *TranscriptFetcher) { f.watchURL = u }
}

// WithPlayerURL overrides the Innertube /player URL.
func WithPlayerURL(u string) FetcherOption {
	return func(f *TranscriptFetcher) { f.playerURL = u }
}

// WithSubtitleSource enables the subtitle-download fallback. nil disables it.
func WithSubtitleSource(s SubtitleSource) FetcherOption {
	return func(f *TranscriptFetcher) { f.subtitles = s }
}

// NewTranscriptFetcher creates a fetcher. A nil client means http.DefaultClient.
func NewTranscriptFetcher(client *http.Client, opts ...FetcherOption) *TranscriptFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &TranscriptFetcher{
		client:    client,
		watchURL:  ytWatchURL,
		playerURL: ytInnertubeURL,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch returns the transcript of videoID as whitespace-joined text without timing.
// langs lists preferred caption languages in order; empty means any.
// An empty transcript is returned as ("", nil).
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string, langs []string) (string, error) {
	engine.IncrTranscriptRequest()

	text, err := f.fetchPrimary(ctx, videoID, langs)
	if err == nil {
		return text, nil
	}

	if f.subtitles != nil && (errors.Is(err, ErrTranscriptsDisabled) || errors.Is(err, ErrNoTranscriptFound)) {
		slog.Warn("youtube: no transcript from player, trying subtitle download",
			slog.String("id", videoID), slog.Any("error", err))
		engine.IncrSubtitleFallback()
		text, serr := f.subtitles.Subtitles(ctx, videoID, langs)
		if serr != nil {
			engine.IncrTranscriptError()
			return "", fmt.Errorf("subtitle fallback: %w", serr)
		}
		return text, nil
	}

	engine.IncrTranscriptError()
	return "", err
}

// fetchPrimary scrapes the watch page and falls back to the ANDROID player
// only when the page itself could not be read.
func (f *TranscriptFetcher) fetchPrimary(ctx context.Context, videoID string, langs []string) (string, error) {
	pr, err := f.playerFromWatchPage(ctx, videoID)
	if err != nil {
		slog.Warn("youtube: page scrape failed, trying player",
			slog.String("id", videoID), slog.Any("error", err))
		pr, err = f.postPlayerANDROID(ctx, videoID)
		if err != nil {
			return "", err
		}
	}

	track, err := classifyPlayer(pr, langs)
	if err != nil {
		return "", err
	}
	slog.Debug("youtube: caption track selected",
		slog.String("id", videoID), slog.String("lang", track.LanguageCode), slog.String("kind", track.Kind))

	body, err := f.getTimedText(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}
	return parseTimedText(body)
}

// playerFromWatchPage loads the watch page and decodes its ytInitialPlayerResponse.
func (f *TranscriptFetcher) playerFromWatchPage(ctx context.Context, videoID string) (*playerResp, error) {
	body, err := f.getWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	data, err := findPlayerResponse(body)
	if err != nil {
		return nil, err
	}
	var pr playerResp
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("%w: decode ytInitialPlayerResponse: %v", errScrape, err)
	}
	return &pr, nil
}

// findPlayerResponse returns the ytInitialPlayerResponse object from the page's <script> blocks.
func findPlayerResponse(page []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", errScrape, err)
	}

	var found []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.Text()
		idx := strings.Index(src, ytInitialPlayerResponseMarker)
		if idx < 0 {
			return true
		}
		found = extractJSON([]byte(src[idx+len(ytInitialPlayerResponseMarker):]))
		return found == nil
	})
	if found == nil {
		return nil, fmt.Errorf("%w: ytInitialPlayerResponse not found", errScrape)
	}
	return found, nil
}

// classifyPlayer maps a player response onto the failure taxonomy or the track to download.
func classifyPlayer(pr *playerResp, langs []string) (captionTrack, error) {
	if ps := pr.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "", "OK":
		case "ERROR", "UNPLAYABLE":
			return captionTrack{}, fmt.Errorf("%w: %s", ErrVideoUnavailable, reasonOr(ps.Reason, ps.Status))
		default:
			if pr.Captions == nil {
				return captionTrack{}, fmt.Errorf("video not playable (%s): %s", ps.Status, reasonOr(ps.Reason, "no reason given"))
			}
		}
	}
	if pr.Captions == nil {
		return captionTrack{}, fmt.Errorf("%w: no captions in player response", ErrTranscriptsDisabled)
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, fmt.Errorf("%w: no caption tracks", ErrTranscriptsDisabled)
	}
	return pickTrack(tracks, langs)
}

func reasonOr(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the best usable caption track for the given language preferences.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, error) {
	candidates := rankTracks(tracks, langs)
	if len(candidates) == 0 {
		return captionTrack{}, fmt.Errorf("%w: requested %s, available %s",
			ErrNoTranscriptFound, strings.Join(langs, ","), strings.Join(trackLanguages(tracks), ","))
	}
	for _, t := range candidates {
		if !needsPoToken(t.BaseURL) {
			return t, nil
		}
	}
	return captionTrack{}, errors.New("all matching caption tracks require a PoToken")
}

// rankTracks orders the tracks matching langs: manual before auto-generated,
// exact language before base-subtag match, earlier langs first.
func rankTracks(tracks []captionTrack, langs []string) []captionTrack {
	var manual, asr []captionTrack
	add := func(t captionTrack) {
		if t.Kind == "asr" {
			asr = append(asr, t)
		} else {
			manual = append(manual, t)
		}
	}

	if len(langs) == 0 {
		for _, t := range tracks {
			add(t)
		}
		return append(manual, asr...)
	}

	seen := make(map[int]bool, len(tracks))
	for _, lang := range langs {
		for _, exact := range []bool{true, false} {
			for i, t := range tracks {
				if seen[i] || !langMatches(t.LanguageCode, lang, exact) {
					continue
				}
				seen[i] = true
				add(t)
			}
		}
	}
	return append(manual, asr...)
}

// langMatches compares language tags exactly or by base subtag ("en" ~ "en-US").
func langMatches(code, want string, exact bool) bool {
	if exact {
		return strings.EqualFold(code, want)
	}
	return strings.EqualFold(baseSubtag(code), baseSubtag(want))
}

func baseSubtag(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return tag[:i]
	}
	return tag
}

func trackLanguages(tracks []captionTrack) []string {
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		code := t.LanguageCode
		if t.Kind == "asr" {
			code += "(auto)"
		}
		out = append(out, code)
	}
	return out
}

// parseTimedText flattens a timedtext XML document into plain text.
func parseTimedText(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}
	fragments := make([]string, 0, len(tt.Lines)+len(tt.Body.Paras))
	for _, l := range tt.Lines {
		fragments = append(fragments, l.Text)
	}
	for _, p := range tt.Body.Paras {
		fragments = append(fragments, p.Inner)
	}
	return engine.JoinFragments(fragments), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
