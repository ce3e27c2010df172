package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseGoogleTranslation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"two sentences", `[[["Hola. ","Hello. ",null,null,10],["¿Cómo estás?","How are you?",null,null,10]],null,"en"]`, "Hola. ¿Cómo estás?", false},
		{"transliteration row", `[[["Привет","Hello",null,null,1],[null,null,"Privet"]],null,"en"]`, "Привет", false},
		{"empty", `[[],null,"en"]`, "", true},
		{"not json", `<html>`, "", true},
		{"wrong shape", `[]`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGoogleTranslation([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoogleTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "auto" || q.Get("dt") != "t" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
			return
		}
		fmt.Fprintf(w, `[[["<%s> %s","src",null,null,1]],null,"en"]`, q.Get("tl"), r.PostForm.Get("q"))
	}))
	defer srv.Close()

	tr := NewGoogleTranslator(srv.Client(), srv.URL)
	got, err := tr.Translate(context.Background(), "a & b", Language{Code: "zh", Name: "Chinese"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "<zh-CN> a & b" {
		t.Errorf("got %q", got)
	}
}

func TestGoogleTranslator_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGoogleTranslator(srv.Client(), srv.URL).Translate(context.Background(), "x", DefaultLanguage)
	if err == nil || !strings.Contains(err.Error(), "HTTP 429") {
		t.Fatalf("err = %v", err)
	}
}

func TestLLMTranslator(t *testing.T) {
	model := &recordingLLM{resp: "```\n\"\"\"\nBonjour le monde\n\"\"\"\n```"}
	got, err := NewLLMTranslator(model).Translate(context.Background(), "Hello world", Language{Code: "fr", Name: "French"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Bonjour le monde" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(model.system, "into French") {
		t.Errorf("system prompt = %q", model.system)
	}
	if !strings.Contains(model.prompt, "\"\"\"\nHello world\n\"\"\"") {
		t.Errorf("user prompt = %q", model.prompt)
	}
}

func TestLLMTranslator_Errors(t *testing.T) {
	_, err := NewLLMTranslator(&recordingLLM{err: errors.New("boom")}).Translate(context.Background(), "x", DefaultLanguage)
	if err == nil || !strings.Contains(err.Error(), "llm translate: boom") {
		t.Errorf("err = %v", err)
	}
	_, err = NewLLMTranslator(&recordingLLM{resp: "```\n```"}).Translate(context.Background(), "x", DefaultLanguage)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}
