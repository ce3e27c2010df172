package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
)

// SubtitleSource downloads subtitles through a route independent of the player captions.
type SubtitleSource interface {
	Subtitles(ctx context.Context, videoID string, langs []string) (string, error)
}

// CommandRunner runs name with args and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// YtDlp fetches subtitles with the yt-dlp media-info extractor.
type YtDlp struct {
	path string
	run  CommandRunner
}

// NewYtDlp creates a yt-dlp subtitle source. A nil run executes the binary.
func NewYtDlp(path string, run CommandRunner) *YtDlp {
	if path == "" {
		path = "yt-dlp"
	}
	if run == nil {
		run = execRunner
	}
	return &YtDlp{path: path, run: run}
}

// LookupYtDlp returns a YtDlp when path resolves to an executable.
func LookupYtDlp(path string) (*YtDlp, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	return NewYtDlp(resolved, nil), nil
}

// Subtitles writes manual or auto-generated subtitles as VTT into a temp dir and flattens them.
func (y *YtDlp) Subtitles(ctx context.Context, videoID string, langs []string) (string, error) {
	dir, err := os.MkdirTemp("", "ytnotes-subs-")
	if err != nil {
		return "", fmt.Errorf("yt-dlp: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ref := VideoRef{ID: videoID}
	out, err := y.run(ctx, y.path, ytDlpArgs(dir, ref.WatchURL(), langs)...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", err, lastLine(out))
	}

	file, err := findSubtitleFile(dir, videoID, langs)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("yt-dlp: read subtitles: %w", err)
	}
	return parseVTT(string(content)), nil
}

func ytDlpArgs(dir, watchURL string, langs []string) []string {
	return []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "vtt",
		"--sub-langs", subLangs(langs),
		"--no-playlist",
		"--no-progress",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		watchURL,
	}
}

// subLangs builds the --sub-langs selector; each lang also matches its regional variants.
func subLangs(langs []string) string {
	if len(langs) == 0 {
		return "all"
	}
	parts := make([]string, 0, 2*len(langs))
	for _, l := range langs {
		parts = append(parts, l, l+"-.*")
	}
	return strings.Join(parts, ",")
}

// findSubtitleFile picks <id>.<lang>.vtt honoring the order of langs, else any .vtt written.
func findSubtitleFile(dir, videoID string, langs []string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, videoID+"*.vtt"))
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}
	if len(matches) == 0 {
		return "", errors.New("yt-dlp: no subtitles written")
	}
	for _, lang := range langs {
		for _, exact := range []bool{true, false} {
			for _, m := range matches {
				if langMatches(subtitleLang(m, videoID), lang, exact) {
					return m, nil
				}
			}
		}
	}
	return matches[0], nil
}

// subtitleLang returns "en-US" for ".../<id>.en-US.vtt".
func subtitleLang(path, videoID string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".vtt")
	name = strings.TrimPrefix(name, videoID)
	return strings.TrimPrefix(name, ".")
}

var (
	vttTimestampRe = regexp.MustCompile(`\d{2}:\d{2}(?::\d{2})?\.\d{3}\s+-->\s+\d{2}:\d{2}(?::\d{2})?\.\d{3}`)
	vttTagRe       = regexp.MustCompile(`<[^>]*>`)
)

// parseVTT extracts cue text from a WebVTT document. Auto-generated tracks repeat
// each line in the following cue, so consecutive duplicates are dropped.
func parseVTT(content string) string {
	var fragments []string
	prev := ""
	inHeader := true
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			inHeader = false
			continue
		}
		if inHeader || strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "WEBVTT") {
			continue
		}
		if vttTimestampRe.MatchString(line) {
			continue
		}
		if _, err := strconv.Atoi(line); err == nil {
			continue
		}
		line = strings.TrimSpace(vttTagRe.ReplaceAllString(line, ""))
		if line == "" || line == prev {
			continue
		}
		prev = line
		fragments = append(fragments, line)
	}
	return engine.JoinFragments(fragments)
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return engine.TruncateRunes(lines[len(lines)-1], 300, "")
}
