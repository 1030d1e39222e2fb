// Package planner converts natural language into structured schedules using
// an AI provider. It owns the prompt protocol, the tolerant JSON decoding of
// model output, and the post-validation that keeps results well formed.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/provider"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
)

const (
	defaultMaxRetries  = 2
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxTokens   = 4000
	defaultTemperature = 0.1
)

// QA is one clarifying question and the user's answer, carried across
// multi-turn schedule generation.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Result is the outcome of a schedule-producing operation: either the
// provider needs more information, or it resolved a complete schedule.
type Result struct {
	NeedsClarification bool
	Questions          []string
	Schedule           []schedule.Event
	ChangesSummary     string
}

// CandidateStatus marks whether an extracted task has all necessary detail.
type CandidateStatus string

const (
	CandidateComplete  CandidateStatus = "complete"
	CandidateNeedsInfo CandidateStatus = "needs_info"
)

// TaskCandidate is a task identified in a live transcript. Time and Duration
// are empty when the speaker has not mentioned them yet.
type TaskCandidate struct {
	Name     string          `json:"name"`
	Time     string          `json:"time,omitempty"`
	Duration string          `json:"duration,omitempty"`
	Status   CandidateStatus `json:"status"`
}

// DaySummary is the structured end-of-day review.
type DaySummary struct {
	Accomplishments []string `json:"accomplishments"`
	Learnings       []string `json:"learnings"`
	Suggestions     []string `json:"suggestions"`
}

// GoalSuggestions breaks a goal down into schedulable pieces: one-off
// tasks, multi-step flows, and recurring routines.
type GoalSuggestions struct {
	SuggestedTasks    []string `json:"suggested_tasks"`
	SuggestedFlows    []string `json:"suggested_flows"`
	SuggestedRoutines []string `json:"suggested_routines"`
}

// Transformer converts natural language into schedules via an AI provider.
type Transformer struct {
	client      provider.Client
	logger      *log.Logger
	maxRetries  int
	baseBackoff time.Duration
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger used for retry and decode diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(t *Transformer) {
		t.logger = logger
	}
}

// WithRetry overrides the retry policy for transient provider failures.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(t *Transformer) {
		t.maxRetries = maxRetries
		t.baseBackoff = baseBackoff
	}
}

// New creates a Transformer backed by the given provider client.
func New(client provider.Client, opts ...Option) *Transformer {
	t := &Transformer{
		client:      client,
		logger:      log.Default(),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// generate calls the provider with bounded, jittered retry for transient
// failures. A context cancellation is never retried.
func (t *Transformer) generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := t.baseBackoff << (attempt - 1)
			jitter := time.Duration(rand.Int63n(int64(backoff/2) + 1))
			t.logger.Warn("provider call failed, retrying",
				"attempt", attempt,
				"backoff", backoff+jitter,
				"error", lastErr.Error(),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		resp, err := t.client.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// generateInto runs a generation request and decodes the JSON response into
// out. Malformed JSON is re-asked once before being surfaced as a provider
// error.
func (t *Transformer) generateInto(ctx context.Context, req *provider.GenerateRequest, out any) error {
	resp, err := t.generate(ctx, req)
	if err != nil {
		return err
	}

	if err := decodeJSONResponse(resp.Content, out); err == nil {
		return nil
	}

	t.logger.Warn("malformed provider response, re-asking once",
		"provider", resp.Provider,
		"model", resp.Model,
	)

	resp, err = t.generate(ctx, req)
	if err != nil {
		return err
	}
	if err := decodeJSONResponse(resp.Content, out); err != nil {
		return errors.NewProviderBadResponseError(resp.Provider, err)
	}
	return nil
}

// decodeJSONResponse unmarshals model output into out, tolerating code
// fences and leading prose around the JSON payload.
func decodeJSONResponse(content string, out any) error {
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	extracted := extractJSONFromMarkdown(content)
	if extracted == "" {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		return fmt.Errorf("parse extracted JSON: %w", err)
	}
	return nil
}

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*\\n([\\s\\S]*?)```")

// extractJSONFromMarkdown pulls a JSON object out of a code block, or falls
// back to brace matching when the model skipped the fences.
func extractJSONFromMarkdown(content string) string {
	matches := jsonBlockRegex.FindStringSubmatch(content)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return content[start : i+1]
			}
		}
	}

	return ""
}
