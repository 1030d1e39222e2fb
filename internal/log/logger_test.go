package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/dayflow/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(buf),
	})
	return logger, buf
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN and ERROR should be logged, got: %s", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("structured message", "schedule_len", 4, "provider", "anthropic")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if entry["msg"] != "structured message" {
		t.Errorf("expected msg field, got %v", entry["msg"])
	}
	if entry["provider"] != "anthropic" {
		t.Errorf("expected provider attribute, got %v", entry["provider"])
	}
}

func TestLoggerWith(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	child := logger.With("component", "planner")
	child.Info("generated schedule")

	if !strings.Contains(buf.String(), `"component":"planner"`) {
		t.Errorf("expected component attribute, got: %s", buf.String())
	}
}

func TestWithError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	err := errors.New(errors.ErrCodeProviderAPI, "provider returned status 500").
		WithSuggestion("retry the request")

	logger.WithError(err).Error("plan generation failed")

	out := buf.String()
	if !strings.Contains(out, "PROVIDER-004") {
		t.Errorf("expected error_code in output, got: %s", out)
	}
	if !strings.Contains(out, "retry the request") {
		t.Errorf("expected suggestions in output, got: %s", out)
	}
}

func TestWithErrorNil(t *testing.T) {
	logger, _ := newBufferLogger(LevelInfo, FormatJSON)

	// Must return the same logger unchanged, not panic.
	if got := logger.WithError(nil); got != logger {
		t.Error("WithError(nil) should return the receiver")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("text") != FormatText {
		t.Error("expected FormatText")
	}
	if ParseFormat("console") != FormatText {
		t.Error("console should map to FormatText")
	}
	if ParseFormat("unknown") != FormatJSON {
		t.Error("unknown formats should default to JSON")
	}
}

func TestDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	first := DefaultLogger()
	if first == nil {
		t.Fatal("DefaultLogger should lazily initialize")
	}
	if second := DefaultLogger(); second != first {
		t.Error("DefaultLogger should be stable once initialized")
	}
}
