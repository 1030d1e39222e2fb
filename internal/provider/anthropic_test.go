package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestNewAnthropic(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{
			name:     "valid settings",
			settings: Settings{Name: "anthropic", APIKey: "test-key"},
			wantErr:  false,
		},
		{
			name:     "missing api key",
			settings: Settings{Name: "anthropic"},
			wantErr:  true,
		},
		{
			name:     "custom base url",
			settings: Settings{Name: "anthropic", APIKey: "test-key", BaseURL: "http://localhost:9999/v1"},
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewAnthropic(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAnthropic() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && client == nil {
				t.Error("NewAnthropic() returned nil client without error")
			}
		})
	}
}

func TestAnthropicGenerate(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("unexpected version header: %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) == 0 {
			t.Error("no messages in request")
		}
		if req.MaxTokens == 0 {
			t.Error("max_tokens not set")
		}
		if req.System != "You plan days." {
			t.Errorf("system prompt not forwarded, got %q", req.System)
		}

		resp := anthropicResponse{
			ID:         "msg_test",
			Type:       "message",
			Role:       "assistant",
			Content:    []anthropicContent{{Type: "text", Text: `{"schedule":[]}`}},
			Model:      "claude-sonnet-4-5",
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 5},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))

	client, err := NewAnthropic(Settings{Name: "anthropic", APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropic() error = %v", err)
	}

	resp, err := client.Generate(context.Background(), &GenerateRequest{
		Prompt:       "Plan my day",
		SystemPrompt: "You plan days.",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if resp.Content != `{"schedule":[]}` {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("expected 15 tokens, got %d", resp.TokensUsed)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %s", resp.Provider)
	}
}

func TestAnthropicGenerateAPIError(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Error: &anthropicError{Type: "rate_limit_error", Message: "rate limited"},
		})
	}))

	client, err := NewAnthropic(Settings{Name: "anthropic", APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropic() error = %v", err)
	}

	_, err = client.Generate(context.Background(), &GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error for rate-limited response")
	}
}

func TestAnthropicConversationContext(t *testing.T) {
	var got anthropicRequest
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "ok"}},
		})
	}))

	client, _ := NewAnthropic(Settings{Name: "anthropic", APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Generate(context.Background(), &GenerateRequest{
		Prompt: "final question",
		Context: []Message{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "second"},
		},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Content != "first" || got.Messages[2].Content != "final question" {
		t.Errorf("conversation order not preserved: %+v", got.Messages)
	}
}
