package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/provider"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
)

type generateScheduleResponse struct {
	NeedsClarification  bool            `json:"needs_clarification"`
	ClarifyingQuestions []string        `json:"clarifying_questions"`
	Tasks               []schedule.Task `json:"tasks"`
}

type modifyScheduleResponse struct {
	NeedsClarification  bool             `json:"needs_clarification"`
	ClarifyingQuestions []string         `json:"clarifying_questions"`
	Schedule            []schedule.Event `json:"schedule"`
	ChangesSummary      string           `json:"changes_summary"`
}

type extractTasksResponse struct {
	Tasks []TaskCandidate `json:"tasks"`
}

// GenerateSchedule turns an unstructured plan into a full schedule. History
// carries earlier clarifying questions and answers; the original plan is
// resubmitted verbatim on every round.
func (t *Transformer) GenerateSchedule(ctx context.Context, plan, currentDate string, history []QA) (*Result, error) {
	if strings.TrimSpace(plan) == "" {
		return nil, errors.NewPlanEmptyError()
	}

	req := &provider.GenerateRequest{
		Prompt:       buildGenerateSchedulePrompt(plan, currentDate, history),
		SystemPrompt: scheduleSystemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
	}

	var resp generateScheduleResponse
	if err := t.generateInto(ctx, req, &resp); err != nil {
		return nil, err
	}

	if resp.NeedsClarification && len(resp.ClarifyingQuestions) > 0 {
		return &Result{
			NeedsClarification: true,
			Questions:          resp.ClarifyingQuestions,
		}, nil
	}

	events := schedule.EventsFromTasks(resp.Tasks)
	if len(events) == 0 {
		return nil, errors.NewPlanNoTasksError()
	}
	schedule.Sort(events)

	return &Result{Schedule: events}, nil
}

// AddTask inserts a free-form task request into an existing schedule. A
// conflicting request comes back as a clarification with a proposed
// resolution rather than a partial application.
func (t *Transformer) AddTask(ctx context.Context, existing []schedule.Event, request, currentTime string) (*Result, error) {
	if strings.TrimSpace(request) == "" {
		return nil, errors.NewPlanEmptyError()
	}

	req := &provider.GenerateRequest{
		Prompt:       buildAddTaskPrompt(existing, request, currentTime),
		SystemPrompt: scheduleSystemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
	}

	var resp modifyScheduleResponse
	if err := t.generateInto(ctx, req, &resp); err != nil {
		return nil, err
	}

	if resp.NeedsClarification && len(resp.ClarifyingQuestions) > 0 {
		return &Result{
			NeedsClarification: true,
			Questions:          resp.ClarifyingQuestions,
		}, nil
	}

	if len(resp.Schedule) == 0 {
		return nil, errors.NewProviderBadResponseError(t.client.Info().Name,
			fmt.Errorf("empty schedule returned for add-task"))
	}
	schedule.Sort(resp.Schedule)

	return &Result{
		Schedule:       resp.Schedule,
		ChangesSummary: resp.ChangesSummary,
	}, nil
}

// AddStructuredTask appends an already-structured task to the schedule
// without a provider round trip. Overlaps are tolerated and logged, not
// rejected.
func (t *Transformer) AddStructuredTask(existing []schedule.Event, task schedule.Task) []schedule.Event {
	event := task.Event()

	if conflict, ok := schedule.Overlaps(existing, event.StartMinutes(), event.DurationSeconds()/60); ok {
		t.logger.Warn("structured task overlaps existing event",
			"task", event.Task,
			"overlaps", conflict.Task,
		)
	}

	updated := make([]schedule.Event, 0, len(existing)+1)
	updated = append(updated, existing...)
	updated = append(updated, event)
	schedule.Sort(updated)
	return updated
}

// AdjustForDelay shifts every not-yet-started event forward by the given
// delay. Events that started before currentTime must come back unchanged;
// a response that rewrites the past is rejected.
func (t *Transformer) AdjustForDelay(ctx context.Context, existing []schedule.Event, delay, currentTime string) (*Result, error) {
	if strings.TrimSpace(delay) == "" {
		return nil, errors.NewPlanEmptyError()
	}

	req := &provider.GenerateRequest{
		Prompt:       buildAdjustDelayPrompt(existing, delay, currentTime),
		SystemPrompt: scheduleSystemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
	}

	var resp modifyScheduleResponse
	if err := t.generateInto(ctx, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Schedule) != len(existing) {
		return nil, errors.NewProviderBadResponseError(t.client.Info().Name,
			fmt.Errorf("delay adjustment returned %d events, want %d", len(resp.Schedule), len(existing)))
	}
	schedule.Sort(resp.Schedule)

	currentMinutes := schedule.ParseClockMinutes(currentTime)
	wantPast, _ := schedule.SplitAt(existing, currentMinutes)
	gotPast, _ := schedule.SplitAt(resp.Schedule, currentMinutes)
	if !equalEvents(wantPast, gotPast) {
		return nil, errors.NewProviderBadResponseError(t.client.Info().Name,
			fmt.Errorf("delay adjustment modified events that already started"))
	}

	return &Result{
		Schedule:       resp.Schedule,
		ChangesSummary: resp.ChangesSummary,
	}, nil
}

// ExtractTasks pulls task candidates from a live, possibly incomplete
// transcript. A blank transcript short-circuits without a provider call.
func (t *Transformer) ExtractTasks(ctx context.Context, transcript string) ([]TaskCandidate, error) {
	if strings.TrimSpace(transcript) == "" {
		return []TaskCandidate{}, nil
	}

	req := &provider.GenerateRequest{
		Prompt:       buildExtractTasksPrompt(transcript),
		SystemPrompt: scheduleSystemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    1000,
	}

	var resp extractTasksResponse
	if err := t.generateInto(ctx, req, &resp); err != nil {
		return nil, err
	}

	if resp.Tasks == nil {
		resp.Tasks = []TaskCandidate{}
	}
	return resp.Tasks, nil
}

// SummarizeDay produces the end-of-day accomplishments/learnings/suggestions
// review from a free-form activity log.
func (t *Transformer) SummarizeDay(ctx context.Context, activities string) (*DaySummary, error) {
	if strings.TrimSpace(activities) == "" {
		return nil, errors.NewPlanEmptyError()
	}

	req := &provider.GenerateRequest{
		Prompt:       buildSummarizeDayPrompt(activities),
		SystemPrompt: summarySystemPrompt,
		Temperature:  0.4,
		MaxTokens:    defaultMaxTokens,
	}

	var summary DaySummary
	if err := t.generateInto(ctx, req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SuggestTasksFromGoal breaks a user goal into suggested tasks, flows,
// and routines. Empty lists come back as empty slices, never nil.
func (t *Transformer) SuggestTasksFromGoal(ctx context.Context, goal string) (*GoalSuggestions, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, errors.NewPlanEmptyError()
	}

	req := &provider.GenerateRequest{
		Prompt:       buildSuggestTasksPrompt(goal),
		SystemPrompt: scheduleSystemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    1000,
	}

	var suggestions GoalSuggestions
	if err := t.generateInto(ctx, req, &suggestions); err != nil {
		return nil, err
	}

	if suggestions.SuggestedTasks == nil {
		suggestions.SuggestedTasks = []string{}
	}
	if suggestions.SuggestedFlows == nil {
		suggestions.SuggestedFlows = []string{}
	}
	if suggestions.SuggestedRoutines == nil {
		suggestions.SuggestedRoutines = []string{}
	}
	return &suggestions, nil
}

func equalEvents(a, b []schedule.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
