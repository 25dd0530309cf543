package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

func TestNewGeminiLetterWriter_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{})
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewGeminiLetterWriter_Defaults(t *testing.T) {
	w, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{APIKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.model != "gemini-2.0-flash" {
		t.Errorf("expected default model, got %s", w.model)
	}
}

const letterJSON = `{"letterhead":"Jane Doe","date":"29 August 2026","inside_address":"Acme Corp",` +
	`"salutation":"Dear Hiring Manager","reference":"Re: Backend Engineer","letterbody":"I would like to apply.",` +
	`"closing":"Kind regards","signature":"Jane Doe"}`

func geminiServer(t *testing.T, replyText string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.Header.Get("X-goog-api-key"); key != "key" {
			t.Errorf("unexpected api key header %q", key)
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Errorf("expected JSON response mode, got %q", req.GenerationConfig.ResponseMIMEType)
		}
		if req.GenerationConfig.ResponseSchema == nil {
			t.Error("expected a response schema")
		}
		if req.SystemInstruction == nil {
			t.Error("expected a system instruction")
		}

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"role":  "model",
						"parts": []map[string]string{{"text": replyText}},
					},
					"finishReason": "STOP",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testLetterRequest() *domain.LetterRequest {
	return &domain.LetterRequest{
		System: "You write business letters.",
		Prompt: "Write a letter for the Backend Engineer role at Acme.",
	}
}

func TestGeminiLetterWriter_Write(t *testing.T) {
	srv := geminiServer(t, letterJSON)
	w, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{APIKey: "key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	letter, err := w.Write(context.Background(), testLetterRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter.Salutation != "Dear Hiring Manager" {
		t.Errorf("unexpected salutation %q", letter.Salutation)
	}
	if letter.Body != "I would like to apply." {
		t.Errorf("unexpected body %q", letter.Body)
	}
}

func TestGeminiLetterWriter_WriteFencedOutput(t *testing.T) {
	srv := geminiServer(t, "```json\n"+letterJSON+"\n```")
	w, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{APIKey: "key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	letter, err := w.Write(context.Background(), testLetterRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter.Signature != "Jane Doe" {
		t.Errorf("unexpected signature %q", letter.Signature)
	}
}

func TestGeminiLetterWriter_WriteArrayOutput(t *testing.T) {
	srv := geminiServer(t, "["+letterJSON+"]")
	w, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{APIKey: "key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	letter, err := w.Write(context.Background(), testLetterRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter.Closing != "Kind regards" {
		t.Errorf("unexpected closing %q", letter.Closing)
	}
}

func TestGeminiLetterWriter_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"invalid schema","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	w, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{APIKey: "key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = w.Write(context.Background(), testLetterRequest())
	if err == nil {
		t.Fatal("expected error from API")
	}
	if !strings.Contains(err.Error(), "invalid schema") {
		t.Errorf("expected API message in error, got %v", err)
	}
}

func TestGeminiLetterWriter_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	w, err := NewGeminiLetterWriter(GeminiLetterWriterConfig{APIKey: "key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = w.Write(context.Background(), testLetterRequest())
	if err == nil {
		t.Error("expected error for missing candidates")
	}
}

func TestParseLetter_Invalid(t *testing.T) {
	if _, err := parseLetter("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := parseLetter("[]"); err == nil {
		t.Error("expected error for empty array")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"{}":                      "{}",
		"```json\n{}\n```":        "{}",
		"```\n{}\n```":            "{}",
		"  ```json\n{\"a\":1}```": "{\"a\":1}",
	}
	for in, want := range cases {
		if got := stripCodeFences(in); got != want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}
