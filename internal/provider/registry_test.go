package provider

import (
	"context"
	"slices"
	"testing"
	"time"
)

// fakeClient is a minimal Client for registry tests.
type fakeClient struct {
	name   string
	closed bool
}

func (f *fakeClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "ok", Provider: f.name, Latency: time.Millisecond}, nil
}
func (f *fakeClient) Info() *Info                  { return &Info{Name: f.name} }
func (f *fakeClient) IsAvailable() bool            { return true }
func (f *fakeClient) Health(context.Context) error { return nil }
func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("anthropic", &fakeClient{name: "anthropic"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := reg.Register("anthropic", &fakeClient{name: "anthropic"}); err == nil {
		t.Error("expected error on duplicate registration")
	}

	client, err := reg.Get("anthropic")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if client.Info().Name != "anthropic" {
		t.Errorf("unexpected client: %s", client.Info().Name)
	}

	if _, err := reg.Get("missing"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	fake := &fakeClient{name: "openai"}

	if err := reg.Register("openai", fake); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Remove("openai"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !fake.closed {
		t.Error("expected client to be closed on remove")
	}
	if _, err := reg.Get("openai"); err == nil {
		t.Error("expected provider to be gone after remove")
	}
	if err := reg.Remove("openai"); err == nil {
		t.Error("expected error removing missing provider")
	}
}

func TestRegistryCloseAll(t *testing.T) {
	reg := NewRegistry()
	a := &fakeClient{name: "a"}
	b := &fakeClient{name: "b"}
	_ = reg.Register("a", a)
	_ = reg.Register("b", b)

	if err := reg.CloseAll(); err != nil {
		t.Fatalf("CloseAll() error = %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("expected all clients closed")
	}
	if len(reg.List()) != 0 {
		t.Errorf("expected empty registry, got %v", reg.List())
	}
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"openai", "gemini", "anthropic"} {
		if err := reg.Register(name, &fakeClient{name: name}); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	want := []string{"anthropic", "gemini", "openai"}
	if got := reg.List(); !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestSupportedNamesConstruct(t *testing.T) {
	for _, name := range Supported() {
		client, err := New(Settings{Name: name, APIKey: "k"})
		if err != nil {
			t.Fatalf("New(%s) error = %v", name, err)
		}
		_ = client.Close()
	}
}

func TestNewFactory(t *testing.T) {
	if _, err := New(Settings{Name: "unknown", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider name")
	}

	client, err := New(Settings{Name: "anthropic", APIKey: "k"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Info().Name != "anthropic" {
		t.Errorf("unexpected provider: %s", client.Info().Name)
	}
}

func TestNewFactoryEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	client, err := New(Settings{Name: "openai"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !client.IsAvailable() {
		t.Error("expected client to be available with env key")
	}
}
