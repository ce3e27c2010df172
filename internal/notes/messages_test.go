package notes

import (
	"strings"
	"testing"
)

func TestMessage(t *testing.T) {
	kinds := []Kind{
		KindInvalidURL, KindTranscriptsDisabled, KindNoTranscriptFound,
		KindVideoUnavailable, KindFetch, KindSummarization, KindTranslation,
	}
	seen := make(map[string]Kind)
	for _, k := range kinds {
		msg := Message(k, "boom")
		if msg == "" {
			t.Errorf("Message(%v) is empty", k)
		}
		if prev, dup := seen[msg]; dup {
			t.Errorf("Message(%v) duplicates Message(%v): %q", k, prev, msg)
		}
		seen[msg] = k
	}

	for _, k := range []Kind{KindFetch, KindSummarization, KindTranslation} {
		if !strings.HasSuffix(Message(k, "HTTP 500"), ": HTTP 500") {
			t.Errorf("Message(%v) should carry the detail: %q", k, Message(k, "HTTP 500"))
		}
	}
	if got := Message(KindTranscriptsDisabled, "ignored"); strings.Contains(got, "ignored") {
		t.Errorf("typed kinds should not carry detail: %q", got)
	}
	if got := Message(KindNone, "x"); got != "" {
		t.Errorf("Message(KindNone) = %q", got)
	}
	if got := Message(KindFetch, ""); got != "Could not fetch the transcript." {
		t.Errorf("Message(KindFetch, \"\") = %q", got)
	}
}

func TestKindAndStateString(t *testing.T) {
	if KindNoTranscriptFound.String() != "no_transcript_found" {
		t.Errorf("KindNoTranscriptFound = %q", KindNoTranscriptFound)
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Kind(99) = %q", Kind(99))
	}
	if StateSummarizing.String() != "summarizing" {
		t.Errorf("StateSummarizing = %q", StateSummarizing)
	}
}
