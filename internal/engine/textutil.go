package engine

import (
	"html"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentChrome is sent by clients that must look like a desktop browser.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// CleanCaption turns one caption fragment into plain text: tags stripped,
// entities unescaped (captions are often escaped twice), whitespace collapsed.
func CleanCaption(s string) string {
	s = html.UnescapeString(html.UnescapeString(s))
	s = CleanHTML(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// JoinFragments whitespace-joins non-empty fragments.
func JoinFragments(fragments []string) string {
	var sb strings.Builder
	for _, f := range fragments {
		f = CleanCaption(f)
		if f == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f)
	}
	return sb.String()
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
