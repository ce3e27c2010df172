package sources

import (
	"net/url"
	"regexp"
	"strings"
)

// VideoRef is a validated YouTube video identifier.
// The zero value means "none"; ParseVideoURL never returns a partial ID.
type VideoRef struct {
	ID string
}

// WatchURL returns the canonical watch page URL.
func (v VideoRef) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// ThumbnailURL returns the static thumbnail image URL.
func (v VideoRef) ThumbnailURL() string {
	return "https://img.youtube.com/vi/" + v.ID + "/0.jpg"
}

// IsZero reports whether v holds no identifier.
func (v VideoRef) IsZero() bool { return v.ID == "" }

var (
	videoIDOnlyRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// videoIDRE is the fallback for input url.Parse rejects.
	videoIDRE = regexp.MustCompile(`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|live/|v/)|youtu\.be/)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)
)

// pathPrefixes are the youtube.com paths whose next segment is the video ID.
var pathPrefixes = map[string]bool{
	"embed":  true,
	"shorts": true,
	"live":   true,
	"v":      true,
	"e":      true,
}

// placeholderIDs are embed path words shaped like an ID that name a playlist or channel stream.
var placeholderIDs = map[string]bool{
	"videoseries": true,
	"live_stream": true,
}

func validVideoID(id string) bool {
	return videoIDOnlyRE.MatchString(id) && !placeholderIDs[id]
}

// ParseVideoURL extracts the 11-char video ID from a watch, short-link, embed,
// shorts or live URL, or accepts a bare ID. ok is false when no well-formed ID exists.
func ParseVideoURL(raw string) (ref VideoRef, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VideoRef{}, false
	}
	if validVideoID(raw) {
		return VideoRef{ID: raw}, true
	}

	withScheme := raw
	if !strings.Contains(raw, "://") {
		withScheme = "https://" + raw
	}
	u, err := url.Parse(withScheme)
	if err != nil {
		return matchVideoIDPattern(raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return VideoRef{}, false
	}
	host := youTubeHost(u.Hostname())
	if host == "" {
		return VideoRef{}, false
	}
	if id := idFromURL(host, u); validVideoID(id) {
		return VideoRef{ID: id}, true
	}
	// Malformed query escapes are dropped by url.Query; the pattern still sees them.
	return matchVideoIDPattern(raw)
}

// youTubeHost returns the host without www./m./music. when it belongs to YouTube, else "".
func youTubeHost(host string) string {
	host = strings.ToLower(host)
	for _, p := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, p)
	}
	switch host {
	case "youtu.be", "youtube.com", "youtube-nocookie.com":
		return host
	}
	return ""
}

// idFromURL returns the candidate ID for a parsed YouTube URL, "" when the shape is unknown.
func idFromURL(host string, u *url.URL) string {
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	switch host {
	case "youtu.be":
		if len(segments) == 0 {
			return ""
		}
		return segments[0]
	case "youtube.com", "youtube-nocookie.com":
		if len(segments) == 1 && segments[0] == "watch" {
			return u.Query().Get("v")
		}
		if len(segments) >= 2 && pathPrefixes[segments[0]] {
			return segments[len(segments)-1]
		}
	}
	return ""
}

func matchVideoIDPattern(raw string) (VideoRef, bool) {
	m := videoIDRE.FindStringSubmatch(raw)
	if len(m) < 2 || !validVideoID(m[1]) {
		return VideoRef{}, false
	}
	return VideoRef{ID: m[1]}, true
}
