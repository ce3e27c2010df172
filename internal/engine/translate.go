package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// GoogleTranslateURL is the public web endpoint used by browser extensions and googletrans.
const GoogleTranslateURL = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator translates through the Google Translate web endpoint.
type GoogleTranslator struct {
	client   *http.Client
	endpoint string
}

// NewGoogleTranslator creates a translator; endpoint "" means GoogleTranslateURL.
func NewGoogleTranslator(client *http.Client, endpoint string) *GoogleTranslator {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = GoogleTranslateURL
	}
	return &GoogleTranslator{client: client, endpoint: endpoint}
}

// Translate returns text translated into target. The source language is auto-detected.
func (t *GoogleTranslator) Translate(ctx context.Context, text string, target Language) (string, error) {
	metrics.TranslateRequests.Add(1)
	out, err := t.translate(ctx, text, target)
	if err != nil {
		metrics.TranslateErrors.Add(1)
		return "", fmt.Errorf("google translate: %w", err)
	}
	return out, nil
}

func (t *GoogleTranslator) translate(ctx context.Context, text string, target Language) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", target.GoogleCode())
	params.Set("dt", "t")

	form := url.Values{}
	form.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"?"+params.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	req.Header.Set("User-Agent", UserAgentChrome)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return parseGoogleTranslation(body)
}

// parseGoogleTranslation joins the translated sentences of a gtx response:
// [[["Hola ","Hello ",...],["mundo","world",...]],null,"en",...]
func parseGoogleTranslation(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(top) == 0 {
		return "", errors.New("unexpected response shape")
	}
	var sentences []json.RawMessage
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return "", fmt.Errorf("decode sentences: %w", err)
	}

	var sb strings.Builder
	for _, raw := range sentences {
		var parts []any
		if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
			continue
		}
		// Transliteration rows have a null first element.
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// LLMTranslator translates with the configured generative-text backend.
type LLMTranslator struct {
	llm LLM
}

// NewLLMTranslator creates a translator backed by c.
func NewLLMTranslator(c LLM) *LLMTranslator {
	return &LLMTranslator{llm: c}
}

// Translate returns text translated into target.
func (t *LLMTranslator) Translate(ctx context.Context, text string, target Language) (string, error) {
	metrics.TranslateRequests.Add(1)
	system := fmt.Sprintf(translateSystemPrompt, target.Name, target.Name)
	raw, err := callLLM(ctx, t.llm, system, fmt.Sprintf(translateUserPrompt, text))
	if err != nil {
		metrics.TranslateErrors.Add(1)
		return "", fmt.Errorf("llm translate: %w", err)
	}
	out := stripFences(raw)
	out = strings.TrimPrefix(out, `"""`)
	out = strings.TrimSuffix(out, `"""`)
	out = strings.TrimSpace(out)
	if out == "" {
		metrics.TranslateErrors.Add(1)
		return "", fmt.Errorf("llm translate: %w", ErrEmptyResponse)
	}
	return out, nil
}
