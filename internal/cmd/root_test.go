package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"serve", "plan", "focus", "suggest", "summarize", "provider", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

func TestProviderSubcommands(t *testing.T) {
	want := []string{"show", "health", "use"}

	registered := make(map[string]bool)
	for _, c := range providerCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "provider subcommand %q not registered", name)
	}
}

func TestServeFlags(t *testing.T) {
	for _, flag := range []string{"address", "model", "shutdown-timeout"} {
		require.NotNil(t, serveCmd.Flags().Lookup(flag), "serve flag %q missing", flag)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
		{"mystery", "the provider API key"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, apiKeyEnvVar(tt.provider))
	}
}
