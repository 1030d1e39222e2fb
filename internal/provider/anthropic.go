package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Anthropic implements the Client interface for the Anthropic Claude API
type Anthropic struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	model     string
	maxTokens int
}

// Anthropic API request/response structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason,omitempty"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropic creates a new Anthropic provider instance
func NewAnthropic(settings Settings) (*Anthropic, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("api key not set for anthropic provider")
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}

	model := settings.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}

	maxTokens := settings.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096 // Anthropic requires max_tokens
	}

	return &Anthropic{
		apiKey:    settings.APIKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 120 * time.Second},
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate implements Client.Generate
func (p *Anthropic) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	startTime := time.Now()

	anthReq := p.buildRequest(req)

	reqBody, err := json.Marshal(anthReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

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
		var errResp anthropicResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("anthropic error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("http error %d: %s", httpResp.StatusCode, string(respBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(respBody, &anthResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	content := ""
	if len(anthResp.Content) > 0 {
		content = anthResp.Content[0].Text
	}

	return &GenerateResponse{
		Content:      content,
		TokensUsed:   anthResp.Usage.InputTokens + anthResp.Usage.OutputTokens,
		InputTokens:  anthResp.Usage.InputTokens,
		OutputTokens: anthResp.Usage.OutputTokens,
		Model:        anthResp.Model,
		Latency:      time.Since(startTime),
		FinishReason: anthResp.StopReason,
		Provider:     "anthropic",
	}, nil
}

// buildRequest constructs an Anthropic API request from our GenerateRequest
func (p *Anthropic) buildRequest(req *GenerateRequest) *anthropicRequest {
	// Anthropic keeps the system prompt out of the message list
	messages := []anthropicMessage{}
	for _, msg := range req.Context {
		messages = append(messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, anthropicMessage{
		Role:    "user",
		Content: req.Prompt,
	})

	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	return &anthropicRequest{
		Model:       p.model,
		Messages:    messages,
		System:      req.SystemPrompt,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
}

// Info implements Client.Info
func (p *Anthropic) Info() *Info {
	return &Info{
		Name:        "anthropic",
		Model:       p.model,
		Endpoint:    p.baseURL,
		Description: fmt.Sprintf("Anthropic Claude API provider: %s", p.baseURL),
	}
}

// IsAvailable implements Client.IsAvailable
func (p *Anthropic) IsAvailable() bool {
	return p.apiKey != ""
}

// Health implements Client.Health
func (p *Anthropic) Health(ctx context.Context) error {
	req := &anthropicRequest{
		Model:     p.model,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal health check: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

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
func (p *Anthropic) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
