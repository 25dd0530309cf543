package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Ensure GeminiLetterWriter implements LetterWriter
var _ driven.LetterWriter = (*GeminiLetterWriter)(nil)

// GeminiLetterWriterConfig configures the Gemini letter client.
type GeminiLetterWriterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiLetterWriter drafts cover letters using Google's Gemini API with a
// structured JSON response schema.
type GeminiLetterWriter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiLetterWriter creates a new Gemini letter writer
func NewGeminiLetterWriter(cfg GeminiLetterWriterConfig) (*GeminiLetterWriter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiLetterWriter{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Items      *geminiSchema           `json:"items,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string        `json:"response_mime_type"`
	ResponseSchema   *geminiSchema `json:"response_schema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// letterSchema constrains the model output to the letter structure.
func letterSchema() *geminiSchema {
	stringProp := geminiSchema{Type: "string"}
	return &geminiSchema{
		Type: "object",
		Properties: map[string]geminiSchema{
			"letterhead":     stringProp,
			"date":           stringProp,
			"inside_address": stringProp,
			"salutation":     stringProp,
			"reference":      stringProp,
			"letterbody":     stringProp,
			"closing":        stringProp,
			"signature":      stringProp,
		},
		Required: []string{
			"letterhead", "date", "inside_address", "salutation",
			"reference", "letterbody", "closing", "signature",
		},
	}
}

// Write sends the prompt pair to Gemini and parses the structured letter.
func (g *GeminiLetterWriter) Write(ctx context.Context, req *domain.LetterRequest) (*domain.Letter, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   letterSchema(),
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}

	resp, err := g.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini API returned no candidates")
	}

	text := stripCodeFences(resp.Candidates[0].Content.Parts[0].Text)
	return parseLetter(text)
}

// parseLetter decodes the model output, accepting both a bare object and a
// single-element array wrapping it.
func parseLetter(text string) (*domain.Letter, error) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "[") {
		var letters []domain.Letter
		if err := json.Unmarshal([]byte(trimmed), &letters); err != nil {
			return nil, fmt.Errorf("failed to parse letter response: %w", err)
		}
		if len(letters) == 0 {
			return nil, fmt.Errorf("letter response array is empty")
		}
		return &letters[0], nil
	}

	var letter domain.Letter
	if err := json.Unmarshal([]byte(trimmed), &letter); err != nil {
		return nil, fmt.Errorf("failed to parse letter response: %w", err)
	}
	return &letter, nil
}

// stripCodeFences removes a markdown code fence if the model wrapped its
// JSON output in one despite the response schema.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// doRequest makes a request to the Gemini generateContent API
func (g *GeminiLetterWriter) doRequest(ctx context.Context, reqBody geminiRequest) (*geminiResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if genResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (status: %s, code: %d)",
			genResp.Error.Message, genResp.Error.Status, genResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	return &genResp, nil
}
