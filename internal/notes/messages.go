package notes

// Kind classifies why a run ended in the Error state, or why it carries a warning.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidURL
	KindTranscriptsDisabled
	KindNoTranscriptFound
	KindVideoUnavailable
	KindFetch
	KindSummarization
	KindTranslation // non-fatal
)

var kindNames = [...]string{
	KindNone:                "none",
	KindInvalidURL:          "invalid_url",
	KindTranscriptsDisabled: "transcripts_disabled",
	KindNoTranscriptFound:   "no_transcript_found",
	KindVideoUnavailable:    "video_unavailable",
	KindFetch:               "fetch_error",
	KindSummarization:       "summarization_error",
	KindTranslation:         "translation_error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Message returns the text shown to the user for kind. detail is used only
// by the kinds that carry one (fetch, summarization, translation).
func Message(kind Kind, detail string) string {
	switch kind {
	case KindNone:
		return ""
	case KindInvalidURL:
		return "Could not find a YouTube video ID in that link. Paste a watch, youtu.be, or embed URL."
	case KindTranscriptsDisabled:
		return "Transcripts are disabled for this video."
	case KindNoTranscriptFound:
		return "No transcript is available for this video in the requested language."
	case KindVideoUnavailable:
		return "This video is unavailable. It may be private or removed."
	case KindFetch:
		return withDetail("Could not fetch the transcript", detail)
	case KindSummarization:
		return withDetail("Summarization failed", detail)
	case KindTranslation:
		return withDetail("Translation failed, showing the original summary", detail)
	}
	return withDetail("Unexpected error", detail)
}

func withDetail(prefix, detail string) string {
	if detail == "" {
		return prefix + "."
	}
	return prefix + ": " + detail
}
