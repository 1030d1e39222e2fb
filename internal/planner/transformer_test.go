package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	dferrors "github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/provider"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
)

// scriptedClient returns canned responses in order, optionally failing the
// first few calls. It records the requests it receives.
type scriptedClient struct {
	responses []string
	failures  int
	calls     int
	requests  []*provider.GenerateRequest
}

func (s *scriptedClient) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	s.calls++
	s.requests = append(s.requests, req)

	if s.failures > 0 {
		s.failures--
		return nil, errors.New("transient provider failure")
	}

	content := ""
	if len(s.responses) > 0 {
		content = s.responses[0]
		if len(s.responses) > 1 {
			s.responses = s.responses[1:]
		}
	}
	return &provider.GenerateResponse{Content: content, Provider: "scripted", Model: "test"}, nil
}

func (s *scriptedClient) Info() *provider.Info         { return &provider.Info{Name: "scripted"} }
func (s *scriptedClient) IsAvailable() bool            { return true }
func (s *scriptedClient) Health(context.Context) error { return nil }
func (s *scriptedClient) Close() error                 { return nil }

func newTestTransformer(client provider.Client) *Transformer {
	return New(client, WithRetry(2, time.Millisecond))
}

func TestGenerateScheduleEmptyPlan(t *testing.T) {
	tf := newTestTransformer(&scriptedClient{})

	_, err := tf.GenerateSchedule(context.Background(), "   ", "2026-08-31", nil)
	if err == nil {
		t.Fatal("expected error for empty plan")
	}

	var dfErr *dferrors.DayflowError
	if !errors.As(err, &dfErr) || dfErr.Code != dferrors.ErrCodePlanEmpty {
		t.Errorf("expected plan-empty error, got %v", err)
	}
}

func TestGenerateScheduleResolved(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": false,
		"clarifying_questions": [],
		"tasks": [
			{"name": "Deep work", "duration_minutes": 90, "scheduled_time": "14:00", "type": "task"},
			{"name": "Standup", "duration_minutes": 15, "scheduled_time": "09:30", "type": "task"}
		]
	}`}}
	tf := newTestTransformer(client)

	result, err := tf.GenerateSchedule(context.Background(), "standup then deep work", "2026-08-31", nil)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if result.NeedsClarification {
		t.Fatal("expected resolved result")
	}
	if len(result.Schedule) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Schedule))
	}

	// Results come back sorted regardless of model ordering.
	if result.Schedule[0].Task != "Standup" || result.Schedule[0].Time != "09:30 AM" {
		t.Errorf("unexpected first event: %+v", result.Schedule[0])
	}
	if result.Schedule[1].Time != "02:00 PM" || result.Schedule[1].Duration != "1hr 30min" {
		t.Errorf("unexpected second event: %+v", result.Schedule[1])
	}
}

func TestGenerateScheduleClarification(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": true,
		"clarifying_questions": ["What time do you start?", "How long is lunch?"],
		"tasks": []
	}`}}
	tf := newTestTransformer(client)

	result, err := tf.GenerateSchedule(context.Background(), "plan my day", "2026-08-31", nil)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if !result.NeedsClarification {
		t.Fatal("expected clarification result")
	}
	if len(result.Questions) != 2 {
		t.Errorf("expected 2 questions, got %v", result.Questions)
	}
}

func TestGenerateScheduleHistoryInPrompt(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": false,
		"clarifying_questions": [],
		"tasks": [{"name": "Work", "duration_minutes": 60, "scheduled_time": "09:00", "type": "task"}]
	}`}}
	tf := newTestTransformer(client)

	history := []QA{{Question: "What time do you start?", Answer: "9am"}}
	if _, err := tf.GenerateSchedule(context.Background(), "plan my day", "2026-08-31", history); err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	prompt := client.requests[0].Prompt
	for _, want := range []string{"plan my day", "What time do you start?", "9am"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateScheduleNoTasks(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": false,
		"clarifying_questions": [],
		"tasks": []
	}`}}
	tf := newTestTransformer(client)

	_, err := tf.GenerateSchedule(context.Background(), "asdf qwerty", "2026-08-31", nil)
	if err == nil {
		t.Fatal("expected no-tasks error")
	}

	var dfErr *dferrors.DayflowError
	if !errors.As(err, &dfErr) || dfErr.Code != dferrors.ErrCodePlanNoTasks {
		t.Errorf("expected plan-no-tasks error, got %v", err)
	}
}

func TestGenerateScheduleCodeFence(t *testing.T) {
	client := &scriptedClient{responses: []string{"Here is your schedule:\n```json\n" + `{
		"needs_clarification": false,
		"clarifying_questions": [],
		"tasks": [{"name": "Review", "duration_minutes": 30, "scheduled_time": "10:00", "type": "task"}]
	}` + "\n```"}}
	tf := newTestTransformer(client)

	result, err := tf.GenerateSchedule(context.Background(), "review at 10", "2026-08-31", nil)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(result.Schedule) != 1 || result.Schedule[0].Task != "Review" {
		t.Errorf("unexpected schedule: %+v", result.Schedule)
	}
}

func TestGenerateRetryAfterTransientFailure(t *testing.T) {
	client := &scriptedClient{
		failures: 2,
		responses: []string{`{
			"needs_clarification": false,
			"clarifying_questions": [],
			"tasks": [{"name": "Work", "duration_minutes": 60, "scheduled_time": "09:00", "type": "task"}]
		}`},
	}
	tf := newTestTransformer(client)

	if _, err := tf.GenerateSchedule(context.Background(), "work at 9", "2026-08-31", nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if client.calls != 3 {
		t.Errorf("expected 3 provider calls, got %d", client.calls)
	}
}

func TestGenerateRetryExhausted(t *testing.T) {
	client := &scriptedClient{failures: 10}
	tf := newTestTransformer(client)

	if _, err := tf.GenerateSchedule(context.Background(), "work at 9", "2026-08-31", nil); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if client.calls != 3 {
		t.Errorf("expected 3 provider calls, got %d", client.calls)
	}
}

func TestMalformedJSONReaskedOnce(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"I could not produce valid output, sorry.",
		`{
			"needs_clarification": false,
			"clarifying_questions": [],
			"tasks": [{"name": "Work", "duration_minutes": 60, "scheduled_time": "09:00", "type": "task"}]
		}`,
	}}
	tf := newTestTransformer(client)

	result, err := tf.GenerateSchedule(context.Background(), "work at 9", "2026-08-31", nil)
	if err != nil {
		t.Fatalf("expected success after re-ask, got %v", err)
	}
	if len(result.Schedule) != 1 {
		t.Errorf("unexpected schedule: %+v", result.Schedule)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", client.calls)
	}
}

func TestMalformedJSONSurfacedAsProviderError(t *testing.T) {
	client := &scriptedClient{responses: []string{"garbage", "more garbage"}}
	tf := newTestTransformer(client)

	_, err := tf.GenerateSchedule(context.Background(), "work at 9", "2026-08-31", nil)
	if err == nil {
		t.Fatal("expected error for persistently malformed output")
	}

	var dfErr *dferrors.DayflowError
	if !errors.As(err, &dfErr) || dfErr.Code != dferrors.ErrCodeProviderBadResponse {
		t.Errorf("expected provider-bad-response error, got %v", err)
	}
}

func TestAddTaskConflictClarification(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": true,
		"clarifying_questions": ["That overlaps your 2pm meeting. Move the meeting to 3pm?"],
		"schedule": [],
		"changes_summary": ""
	}`}}
	tf := newTestTransformer(client)

	existing := []schedule.Event{{Time: "02:00 PM", Task: "Meeting", Duration: "1hr"}}
	result, err := tf.AddTask(context.Background(), existing, "call at 2pm", "11:30 AM")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if !result.NeedsClarification || len(result.Questions) != 1 {
		t.Errorf("expected a single conflict question, got %+v", result)
	}
}

func TestAddTaskResolved(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": false,
		"clarifying_questions": [],
		"schedule": [
			{"time": "09:00 AM", "task": "Standup", "duration": "15min"},
			{"time": "09:30 AM", "task": "Call mom", "duration": "15min"}
		],
		"changes_summary": "Added a 15 minute call after standup."
	}`}}
	tf := newTestTransformer(client)

	existing := []schedule.Event{{Time: "09:00 AM", Task: "Standup", Duration: "15min"}}
	result, err := tf.AddTask(context.Background(), existing, "call mom after standup", "08:00 AM")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if len(result.Schedule) != 2 {
		t.Fatalf("expected full schedule back, got %d events", len(result.Schedule))
	}
	if result.ChangesSummary == "" {
		t.Error("expected a changes summary")
	}
}

func TestAddStructuredTask(t *testing.T) {
	tf := newTestTransformer(&scriptedClient{})

	existing := []schedule.Event{
		{Time: "09:00 AM", Task: "Standup", Duration: "15min"},
		{Time: "02:00 PM", Task: "Review", Duration: "30min"},
	}
	updated := tf.AddStructuredTask(existing, schedule.Task{
		Name:            "Lunch",
		DurationMinutes: 45,
		ScheduledTime:   "12:00",
		Type:            schedule.TaskTypeRoutine,
	})

	if len(updated) != 3 {
		t.Fatalf("expected 3 events, got %d", len(updated))
	}
	if updated[1].Task != "Lunch" || updated[1].Time != "12:00 PM" {
		t.Errorf("expected lunch inserted in order, got %+v", updated)
	}
	if len(existing) != 2 {
		t.Error("input slice must not be mutated")
	}
}

func TestMutationPromptsKeepBufferTime(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"needs_clarification": false,
		"clarifying_questions": [],
		"schedule": [{"time": "09:00 AM", "task": "Standup", "duration": "15min"}],
		"changes_summary": "No change."
	}`}}
	tf := newTestTransformer(client)

	existing := []schedule.Event{{Time: "09:00 AM", Task: "Standup", Duration: "15min"}}
	if _, err := tf.AddTask(context.Background(), existing, "call mom", "08:00 AM"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if _, err := tf.AdjustForDelay(context.Background(), existing, "15 minutes", "08:00 AM"); err != nil {
		t.Fatalf("AdjustForDelay() error = %v", err)
	}

	for i, req := range client.requests {
		if !strings.Contains(req.Prompt, "5-15 minutes of buffer time") {
			t.Errorf("request %d prompt missing the buffer instruction", i)
		}
	}
}

func TestAdjustForDelay(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"schedule": [
			{"time": "09:00 AM", "task": "Standup", "duration": "15min"},
			{"time": "02:15 PM", "task": "Review", "duration": "30min"}
		],
		"changes_summary": "Shifted the afternoon by 15 minutes."
	}`}}
	tf := newTestTransformer(client)

	existing := []schedule.Event{
		{Time: "09:00 AM", Task: "Standup", Duration: "15min"},
		{Time: "02:00 PM", Task: "Review", Duration: "30min"},
	}
	result, err := tf.AdjustForDelay(context.Background(), existing, "15 minutes", "11:30 AM")
	if err != nil {
		t.Fatalf("AdjustForDelay() error = %v", err)
	}
	if result.Schedule[1].Time != "02:15 PM" {
		t.Errorf("expected shifted event, got %+v", result.Schedule[1])
	}
	if result.Schedule[0] != existing[0] {
		t.Errorf("past event must be unchanged, got %+v", result.Schedule[0])
	}
}

func TestAdjustForDelayRejectsRewrittenPast(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"schedule": [
			{"time": "09:15 AM", "task": "Standup", "duration": "15min"},
			{"time": "02:15 PM", "task": "Review", "duration": "30min"}
		],
		"changes_summary": "Shifted everything."
	}`}}
	tf := newTestTransformer(client)

	existing := []schedule.Event{
		{Time: "09:00 AM", Task: "Standup", Duration: "15min"},
		{Time: "02:00 PM", Task: "Review", Duration: "30min"},
	}
	_, err := tf.AdjustForDelay(context.Background(), existing, "15 minutes", "11:30 AM")
	if err == nil {
		t.Fatal("expected error when past events are modified")
	}
}

func TestAdjustForDelayRejectsDroppedEvents(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"schedule": [
			{"time": "02:15 PM", "task": "Review", "duration": "30min"}
		],
		"changes_summary": "Shifted the afternoon."
	}`}}
	tf := newTestTransformer(client)

	existing := []schedule.Event{
		{Time: "09:00 AM", Task: "Standup", Duration: "15min"},
		{Time: "02:00 PM", Task: "Review", Duration: "30min"},
	}
	if _, err := tf.AdjustForDelay(context.Background(), existing, "15 minutes", "11:30 AM"); err == nil {
		t.Fatal("expected error when events are dropped")
	}
}

func TestExtractTasksWhitespaceShortCircuit(t *testing.T) {
	client := &scriptedClient{}
	tf := newTestTransformer(client)

	tasks, err := tf.ExtractTasks(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("ExtractTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no candidates, got %v", tasks)
	}
	if client.calls != 0 {
		t.Errorf("expected no provider calls, got %d", client.calls)
	}
}

func TestExtractTasks(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"tasks": [
			{"name": "Gym", "time": "6:00 PM", "duration": "1hr", "status": "complete"},
			{"name": "Email sweep", "time": null, "duration": null, "status": "needs_info"}
		]
	}`}}
	tf := newTestTransformer(client)

	tasks, err := tf.ExtractTasks(context.Background(), "gym at six for an hour and some emails")
	if err != nil {
		t.Fatalf("ExtractTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(tasks))
	}
	if tasks[0].Status != CandidateComplete {
		t.Errorf("expected complete candidate, got %+v", tasks[0])
	}
	if tasks[1].Status != CandidateNeedsInfo || tasks[1].Time != "" {
		t.Errorf("expected needs_info candidate with empty time, got %+v", tasks[1])
	}
}

func TestSuggestTasksFromGoal(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"suggested_tasks": ["Outline the first chapter"],
		"suggested_flows": ["Research, outline, draft"],
		"suggested_routines": ["Write for 30 minutes every morning"]
	}`}}
	tf := newTestTransformer(client)

	suggestions, err := tf.SuggestTasksFromGoal(context.Background(), "write a novel")
	if err != nil {
		t.Fatalf("SuggestTasksFromGoal() error = %v", err)
	}
	if len(suggestions.SuggestedTasks) != 1 || len(suggestions.SuggestedRoutines) != 1 {
		t.Errorf("unexpected suggestions: %+v", suggestions)
	}

	prompt := client.requests[0].Prompt
	if !strings.Contains(prompt, "write a novel") {
		t.Errorf("prompt missing the goal: %q", prompt)
	}
}

func TestSuggestTasksFromGoalEmptyGoal(t *testing.T) {
	client := &scriptedClient{}
	tf := newTestTransformer(client)

	_, err := tf.SuggestTasksFromGoal(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty goal")
	}
	if client.calls != 0 {
		t.Errorf("expected no provider calls, got %d", client.calls)
	}
}

func TestSuggestTasksFromGoalEmptyCategories(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"suggested_tasks": ["Stretch"]}`}}
	tf := newTestTransformer(client)

	suggestions, err := tf.SuggestTasksFromGoal(context.Background(), "loosen up")
	if err != nil {
		t.Fatalf("SuggestTasksFromGoal() error = %v", err)
	}
	if suggestions.SuggestedFlows == nil || suggestions.SuggestedRoutines == nil {
		t.Errorf("expected empty slices for omitted categories, got %+v", suggestions)
	}
}

func TestSummarizeDay(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"accomplishments": ["Shipped the report"],
		"learnings": ["Mornings are your most focused hours"],
		"suggestions": ["Block 9-11am for deep work tomorrow"]
	}`}}
	tf := newTestTransformer(client)

	summary, err := tf.SummarizeDay(context.Background(), "Finished the quarterly report, felt sharp before lunch.")
	if err != nil {
		t.Fatalf("SummarizeDay() error = %v", err)
	}
	if len(summary.Accomplishments) != 1 || len(summary.Suggestions) != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestExtractJSONFromMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "fenced json block",
			content: "Some text before\n```json\n{\"key\": \"value\"}\n```\nafter",
			want:    `{"key": "value"}`,
		},
		{
			name:    "fenced without language",
			content: "```\n{\"key\": \"value\"}\n```",
			want:    `{"key": "value"}`,
		},
		{
			name:    "bare braces with prose",
			content: `Sure! {"key": {"nested": true}} hope that helps`,
			want:    `{"key": {"nested": true}}`,
		},
		{
			name:    "no json",
			content: "nothing here",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONFromMarkdown(tt.content); got != tt.want {
				t.Errorf("extractJSONFromMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}
