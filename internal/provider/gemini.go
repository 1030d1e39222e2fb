package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Gemini implements the Client interface for the Google Gemini API
type Gemini struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	model     string
	maxTokens int
}

// Gemini API request/response structures
type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
	ModelVersion  string            `json:"modelVersion,omitempty"`
	Error         *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGemini creates a new Gemini provider instance
func NewGemini(settings Settings) (*Gemini, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("api key not set for gemini provider")
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := settings.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Gemini{
		apiKey:    settings.APIKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 120 * time.Second},
		model:     model,
		maxTokens: settings.MaxTokens,
	}, nil
}

// Generate implements Client.Generate
func (p *Gemini) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	startTime := time.Now()

	geminiReq := p.buildRequest(req)

	reqBody, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var errResp geminiResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("gemini error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("http error %d: %s", httpResp.StatusCode, string(respBody))
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	content := ""
	finishReason := ""
	if len(gemResp.Candidates) > 0 {
		var parts []string
		for _, part := range gemResp.Candidates[0].Content.Parts {
			parts = append(parts, part.Text)
		}
		content = strings.Join(parts, "")
		finishReason = gemResp.Candidates[0].FinishReason
	}

	tokens := geminiUsage{}
	if gemResp.UsageMetadata != nil {
		tokens = *gemResp.UsageMetadata
	}

	model := gemResp.ModelVersion
	if model == "" {
		model = p.model
	}

	return &GenerateResponse{
		Content:      content,
		TokensUsed:   tokens.TotalTokenCount,
		InputTokens:  tokens.PromptTokenCount,
		OutputTokens: tokens.CandidatesTokenCount,
		Model:        model,
		Latency:      time.Since(startTime),
		FinishReason: finishReason,
		Provider:     "gemini",
	}, nil
}

// buildRequest constructs a Gemini API request from our GenerateRequest
func (p *Gemini) buildRequest(req *GenerateRequest) *geminiRequest {
	contents := []geminiContent{}

	for _, msg := range req.Context {
		// Gemini uses "model" for assistant turns
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: req.Prompt}},
	})

	gemReq := &geminiRequest{Contents: contents}

	if req.SystemPrompt != "" {
		gemReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}

	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 || req.Temperature > 0 {
		cfg := &geminiGenerationConfig{MaxOutputTokens: maxTokens}
		if req.Temperature > 0 {
			t := req.Temperature
			cfg.Temperature = &t
		}
		gemReq.GenerationConfig = cfg
	}

	return gemReq
}

// Info implements Client.Info
func (p *Gemini) Info() *Info {
	return &Info{
		Name:        "gemini",
		Model:       p.model,
		Endpoint:    p.baseURL,
		Description: fmt.Sprintf("Google Gemini API provider: %s", p.baseURL),
	}
}

// IsAvailable implements Client.IsAvailable
func (p *Gemini) IsAvailable() bool {
	return p.apiKey != ""
}

// Health implements Client.Health
func (p *Gemini) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/models/%s?key=%s", p.baseURL, p.model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Close implements Client.Close
func (p *Gemini) Close() error {
	return nil
}
