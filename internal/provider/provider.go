// Package provider abstracts the language-model APIs the planner calls.
// Each provider is a plain HTTP client behind the Client interface; the
// planner never knows which vendor is answering.
package provider

import (
	"context"
	"time"
)

// Client is the interface every model provider implements.
type Client interface {
	// Generate sends a prompt and returns the complete response.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Info returns metadata about the provider (name, model, endpoint).
	Info() *Info

	// IsAvailable checks if the provider is configured and ready to use.
	IsAvailable() bool

	// Health performs a connectivity check against the provider.
	// Returns nil if healthy, an error describing the problem otherwise.
	Health(ctx context.Context) error

	// Close cleans up any resources used by the provider.
	Close() error
}

// GenerateRequest contains all parameters for generating a response
type GenerateRequest struct {
	// Prompt is the main input text for the model
	Prompt string `json:"prompt"`

	// SystemPrompt sets the system-level instructions
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits the maximum response length.
	// Set to 0 to use the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64 `json:"temperature,omitempty"`

	// Context provides previous messages for multi-turn conversations
	Context []Message `json:"context,omitempty"`
}

// GenerateResponse contains the model's response
type GenerateResponse struct {
	// Content is the generated text
	Content string `json:"content"`

	// TokensUsed is the total tokens consumed (input + output)
	TokensUsed int `json:"tokens_used"`

	// InputTokens is tokens in the prompt
	InputTokens int `json:"input_tokens,omitempty"`

	// OutputTokens is tokens in the response
	OutputTokens int `json:"output_tokens,omitempty"`

	// Model is the actual model that generated the response
	Model string `json:"model"`

	// Latency is how long the generation took
	Latency time.Duration `json:"latency"`

	// FinishReason explains why generation stopped
	FinishReason string `json:"finish_reason"`

	// Provider is the name of the provider that handled this request
	Provider string `json:"provider"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role is who sent the message: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// Info contains metadata about a provider
type Info struct {
	// Name is the provider identifier (e.g., "anthropic", "openai", "gemini")
	Name string

	// Model is the default model requests are routed to
	Model string

	// Endpoint is the base URL requests are sent to
	Endpoint string

	// Description is a human-readable description of the provider
	Description string
}

// Settings configures a provider instance. Loaded from the dayflow config
// file; the API key usually comes from the environment instead.
type Settings struct {
	// Name selects the provider implementation: anthropic, openai, gemini.
	Name string `yaml:"name" json:"name"`

	// APIKey authenticates against the provider's API.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty"`

	// BaseURL overrides the provider's default endpoint. Mainly for tests.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// MaxTokens caps response length. 0 means provider default.
	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}
