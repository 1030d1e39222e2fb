package clarify

import (
	"context"
	"sync"
	"testing"

	"github.com/felixgeelhaar/dayflow/internal/planner"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator returns canned planner results in order and records every
// call it receives.
type scriptedGenerator struct {
	mu      sync.Mutex
	results []*planner.Result
	errs    []error
	calls   []generateCall

	block   chan struct{}
	release chan struct{}
}

type generateCall struct {
	plan    string
	date    string
	history []planner.QA
}

func (g *scriptedGenerator) GenerateSchedule(ctx context.Context, plan, currentDate string, history []planner.QA) (*planner.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, generateCall{plan: plan, date: currentDate, history: history})
	n := len(g.calls) - 1
	block := g.block
	g.mu.Unlock()

	if block != nil {
		block <- struct{}{}
		<-g.release
	}

	if n < len(g.errs) && g.errs[n] != nil {
		return nil, g.errs[n]
	}
	if n < len(g.results) {
		return g.results[n], nil
	}
	return &planner.Result{Schedule: []schedule.Event{{Time: "09:00 AM", Task: "Work", Duration: "1hr"}}}, nil
}

func resolved(events ...schedule.Event) *planner.Result {
	return &planner.Result{Schedule: events}
}

func clarification(questions ...string) *planner.Result {
	return &planner.Result{NeedsClarification: true, Questions: questions}
}

func TestSubmitResolvedImmediately(t *testing.T) {
	gen := &scriptedGenerator{results: []*planner.Result{
		resolved(schedule.Event{Time: "09:00 AM", Task: "Standup", Duration: "15min"}),
	}}
	c := NewController(gen, nil)

	status, err := c.Submit(context.Background(), "standup at 9", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, Ready, status.Mode)
	assert.Len(t, status.Schedule, 1)

	events, ok := c.Schedule()
	require.True(t, ok)
	assert.Equal(t, "Standup", events[0].Task)
}

func TestQueueDrainsOneAnswerPerCall(t *testing.T) {
	gen := &scriptedGenerator{results: []*planner.Result{
		clarification("What time do you start?", "How long is lunch?"),
		resolved(schedule.Event{Time: "09:00 AM", Task: "Work", Duration: "8hr"}),
	}}
	c := NewController(gen, nil)

	status, err := c.Submit(context.Background(), "plan my day", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, AwaitingAnswer, status.Mode)
	assert.Equal(t, "What time do you start?", status.Question)

	// First answer pops the front question but must not resubmit yet.
	status, err = c.Answer(context.Background(), "9am")
	require.NoError(t, err)
	assert.Equal(t, AwaitingAnswer, status.Mode)
	assert.Equal(t, "How long is lunch?", status.Question)
	assert.Len(t, gen.calls, 1)

	// Second answer empties the queue and triggers exactly one resubmission.
	status, err = c.Answer(context.Background(), "30 minutes")
	require.NoError(t, err)
	assert.Equal(t, Ready, status.Mode)
	require.Len(t, gen.calls, 2)

	resubmit := gen.calls[1]
	assert.Equal(t, "plan my day", resubmit.plan, "original plan must be resubmitted verbatim")
	require.Len(t, resubmit.history, 2)
	assert.Equal(t, planner.QA{Question: "What time do you start?", Answer: "9am"}, resubmit.history[0])
	assert.Equal(t, planner.QA{Question: "How long is lunch?", Answer: "30 minutes"}, resubmit.history[1])
}

func TestResubmissionMayAskAgain(t *testing.T) {
	gen := &scriptedGenerator{results: []*planner.Result{
		clarification("What time do you start?"),
		clarification("Do you want a lunch break?"),
		resolved(schedule.Event{Time: "09:00 AM", Task: "Work", Duration: "4hr"}),
	}}
	c := NewController(gen, nil)

	_, err := c.Submit(context.Background(), "plan my day", "2026-08-31")
	require.NoError(t, err)

	status, err := c.Answer(context.Background(), "9am")
	require.NoError(t, err)
	assert.Equal(t, AwaitingAnswer, status.Mode)
	assert.Equal(t, "Do you want a lunch break?", status.Question)

	status, err = c.Answer(context.Background(), "yes, at noon")
	require.NoError(t, err)
	assert.Equal(t, Ready, status.Mode)

	// The second resubmission still carries the whole conversation.
	require.Len(t, gen.calls, 3)
	assert.Len(t, gen.calls[2].history, 2)
}

func TestNewPlanDiscardsOpenDialogue(t *testing.T) {
	gen := &scriptedGenerator{results: []*planner.Result{
		clarification("What time do you start?"),
		resolved(schedule.Event{Time: "02:00 PM", Task: "Other", Duration: "1hr"}),
	}}
	c := NewController(gen, nil)

	_, err := c.Submit(context.Background(), "plan my day", "2026-08-31")
	require.NoError(t, err)
	require.Equal(t, AwaitingAnswer, c.Mode())

	status, err := c.Submit(context.Background(), "completely different plan", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, Ready, status.Mode)
	assert.Empty(t, c.Conversation())

	assert.Equal(t, "completely different plan", gen.calls[1].plan)
	assert.Nil(t, gen.calls[1].history)
}

func TestAnswerValidation(t *testing.T) {
	gen := &scriptedGenerator{}
	c := NewController(gen, nil)

	_, err := c.Answer(context.Background(), "hello")
	assert.Error(t, err, "answer without an open dialogue must fail")

	_, err = c.Answer(context.Background(), "   ")
	assert.Error(t, err, "blank answer must fail")
}

func TestSubmitWhileGeneratingIsRejected(t *testing.T) {
	gen := &scriptedGenerator{
		block:   make(chan struct{}),
		release: make(chan struct{}),
		results: []*planner.Result{resolved(schedule.Event{Time: "09:00 AM", Task: "Work", Duration: "1hr"})},
	}
	c := NewController(gen, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Submit(context.Background(), "plan my day", "2026-08-31")
	}()

	<-gen.block
	_, err := c.Submit(context.Background(), "second plan", "2026-08-31")
	assert.Error(t, err, "re-entrant submission must be rejected, not queued")

	close(gen.release)
	<-done
}

func TestPlannerFailureLeavesDialogueOpen(t *testing.T) {
	gen := &scriptedGenerator{
		results: []*planner.Result{clarification("What time do you start?"), nil},
		errs:    []error{nil, assert.AnError},
	}
	c := NewController(gen, nil)

	_, err := c.Submit(context.Background(), "plan my day", "2026-08-31")
	require.NoError(t, err)

	_, err = c.Answer(context.Background(), "9am")
	require.Error(t, err)

	// The dialogue survives the failure with the question restored so the
	// user can answer again.
	assert.Equal(t, AwaitingAnswer, c.Mode())
	assert.Empty(t, c.Conversation())
	q, ok := c.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "What time do you start?", q)

	// Retrying the answer now succeeds.
	gen.errs = append(gen.errs, nil)
	status, err := c.Answer(context.Background(), "9am")
	require.NoError(t, err)
	assert.Equal(t, Ready, status.Mode)
}

func TestCurrentQuestionExposesOnlyFront(t *testing.T) {
	gen := &scriptedGenerator{results: []*planner.Result{
		clarification("first?", "second?", "third?"),
	}}
	c := NewController(gen, nil)

	_, err := c.Submit(context.Background(), "plan my day", "2026-08-31")
	require.NoError(t, err)

	q, ok := c.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "first?", q)
}
