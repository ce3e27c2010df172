package engine

import "strings"

// Language is one entry of the closed set of summary languages.
// Code is the canonical value; Name is for display only.
type Language struct {
	Code string
	Name string
}

// Languages lists the supported summary languages in display order.
var Languages = []Language{
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"zh", "Chinese"},
	{"hi", "Hindi"},
	{"te", "Telugu"},
	{"kn", "Kannada"},
	{"ta", "Tamil"},
}

// DefaultLanguage is used when no selection is given.
var DefaultLanguage = Languages[0]

// googleCodes holds the codes the Google endpoint wants where they differ from ours.
var googleCodes = map[string]string{
	"zh": "zh-CN",
}

// GoogleCode returns the code understood by the Google Translate endpoint.
func (l Language) GoogleCode() string {
	if c, ok := googleCodes[l.Code]; ok {
		return c
	}
	return l.Code
}

// LookupLanguage resolves a code ("es") or display name ("Spanish") to a Language.
// Matching is case-insensitive.
func LookupLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Language{}, false
	}
	for _, l := range Languages {
		if l.Code == s || strings.ToLower(l.Name) == s {
			return l, true
		}
	}
	return Language{}, false
}
