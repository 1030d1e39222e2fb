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

// OpenAI implements the Client interface for the OpenAI chat completions API
type OpenAI struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	model     string
	maxTokens int
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message,omitempty"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAI creates a new OpenAI provider instance
func NewOpenAI(settings Settings) (*OpenAI, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("api key not set for openai provider")
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := settings.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAI{
		apiKey:    settings.APIKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 120 * time.Second},
		model:     model,
		maxTokens: settings.MaxTokens,
	}, nil
}

// Generate implements Client.Generate
func (p *OpenAI) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	startTime := time.Now()

	oaiReq := p.buildRequest(req)

	reqBody, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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
		var errResp openAIResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("openai error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("http error %d: %s", httpResp.StatusCode, string(respBody))
	}

	var oaiResp openAIResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	content := ""
	finishReason := ""
	if len(oaiResp.Choices) > 0 {
		content = oaiResp.Choices[0].Message.Content
		finishReason = oaiResp.Choices[0].FinishReason
	}

	return &GenerateResponse{
		Content:      content,
		TokensUsed:   oaiResp.Usage.TotalTokens,
		InputTokens:  oaiResp.Usage.PromptTokens,
		OutputTokens: oaiResp.Usage.CompletionTokens,
		Model:        oaiResp.Model,
		Latency:      time.Since(startTime),
		FinishReason: finishReason,
		Provider:     "openai",
	}, nil
}

// buildRequest constructs an OpenAI API request from our GenerateRequest
func (p *OpenAI) buildRequest(req *GenerateRequest) *openAIRequest {
	messages := []openAIMessage{}

	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}

	for _, msg := range req.Context {
		messages = append(messages, openAIMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	messages = append(messages, openAIMessage{
		Role:    "user",
		Content: req.Prompt,
	})

	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	return &openAIRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}
}

// Info implements Client.Info
func (p *OpenAI) Info() *Info {
	return &Info{
		Name:        "openai",
		Model:       p.model,
		Endpoint:    p.baseURL,
		Description: fmt.Sprintf("OpenAI chat completions provider: %s", p.baseURL),
	}
}

// IsAvailable implements Client.IsAvailable
func (p *OpenAI) IsAvailable() bool {
	return p.apiKey != ""
}

// Health implements Client.Health
func (p *OpenAI) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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
func (p *OpenAI) Close() error {
	return nil
}
