package provider

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Supported lists the provider names New accepts.
func Supported() []string {
	return []string{"anthropic", "openai", "gemini"}
}

// Registry manages loaded provider clients keyed by name. Commands that
// fan out across providers iterate it and close everything in one place.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Client
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Client),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(name string, client Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = client
	return nil
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return client, nil
}

// List returns all registered provider names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Remove removes a provider from the registry and closes it
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, exists := r.providers[name]
	if !exists {
		return fmt.Errorf("provider %s not found", name)
	}

	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close provider %s: %w", name, err)
	}

	delete(r.providers, name)
	return nil
}

// CloseAll closes all registered providers
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, client := range r.providers {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %s: %w", name, err))
		}
	}

	r.providers = make(map[string]Client)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}
	return nil
}

// New constructs a provider from settings. When the settings carry no API
// key, the conventional <NAME>_API_KEY environment variable is consulted.
func New(settings Settings) (Client, error) {
	if settings.APIKey == "" {
		settings.APIKey = os.Getenv(strings.ToUpper(settings.Name) + "_API_KEY")
	}

	switch settings.Name {
	case "anthropic":
		return NewAnthropic(settings)
	case "openai":
		return NewOpenAI(settings)
	case "gemini":
		return NewGemini(settings)
	default:
		return nil, fmt.Errorf("unknown provider: %s", settings.Name)
	}
}
