// Package clarify implements the clarification dialogue state machine that
// sits between user plan submissions and the planner. When the planner needs
// more information it hands back a question queue; the controller drains it
// one answer at a time and resubmits the original plan with the accumulated
// conversation.
package clarify

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/planner"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
	"github.com/google/uuid"
)

// Mode is the controller's dialogue state.
type Mode string

const (
	// Idle means no plan has been submitted or the last dialogue was reset.
	Idle Mode = "idle"
	// AwaitingAnswer means clarifying questions are queued for the user.
	AwaitingAnswer Mode = "awaiting_answer"
	// Generating means a planner call is in flight.
	Generating Mode = "generating"
	// Ready means a schedule was resolved and can be adopted.
	Ready Mode = "ready"
)

// Generator is the planner operation the controller drives.
type Generator interface {
	GenerateSchedule(ctx context.Context, plan, currentDate string, history []planner.QA) (*planner.Result, error)
}

// Status is a snapshot of the dialogue after a Submit or Answer call.
type Status struct {
	Mode     Mode
	Question string
	Schedule []schedule.Event
}

// Controller runs one clarification dialogue at a time.
type Controller struct {
	mu        sync.Mutex
	generator Generator
	logger    *log.Logger

	mode         Mode
	dialogueID   string
	originalPlan string
	currentDate  string
	questions    []string
	conversation []planner.QA
	schedule     []schedule.Event
}

// NewController creates an idle controller.
func NewController(generator Generator, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		generator: generator,
		logger:    logger,
		mode:      Idle,
	}
}

// Submit starts a new dialogue for plan. Any open dialogue is discarded
// unconditionally. A submission while a planner call is outstanding is
// rejected, never queued.
func (c *Controller) Submit(ctx context.Context, plan, currentDate string) (*Status, error) {
	c.mu.Lock()
	if c.mode == Generating {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodePlanRequestBusy, "a plan request is already in flight")
	}

	c.reset()
	c.mode = Generating
	c.dialogueID = uuid.New().String()
	c.originalPlan = plan
	c.currentDate = currentDate
	c.mu.Unlock()

	result, err := c.generator.GenerateSchedule(ctx, plan, currentDate, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.reset()
		return nil, err
	}
	return c.applyLocked(result), nil
}

// Answer pops the front question and records the answer. The planner is only
// called again once every queued question has been answered; the resubmission
// carries the original plan verbatim plus the full conversation.
func (c *Controller) Answer(ctx context.Context, text string) (*Status, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeClarifyAnswerEmpty, "answer must not be empty")
	}

	c.mu.Lock()
	if c.mode == Generating {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodePlanRequestBusy, "a plan request is already in flight")
	}
	if c.mode != AwaitingAnswer || len(c.questions) == 0 {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodeClarifyNotAwaiting, "no clarifying question is pending")
	}

	question := c.questions[0]
	c.questions = c.questions[1:]
	c.conversation = append(c.conversation, planner.QA{Question: question, Answer: text})

	if len(c.questions) > 0 {
		status := c.statusLocked()
		c.mu.Unlock()
		return status, nil
	}

	c.mode = Generating
	plan := c.originalPlan
	date := c.currentDate
	history := make([]planner.QA, len(c.conversation))
	copy(history, c.conversation)
	c.mu.Unlock()

	c.logger.Debug("clarification queue drained, resubmitting plan",
		"dialogue_id", c.dialogueID,
		"answers", len(history),
	)

	result, err := c.generator.GenerateSchedule(ctx, plan, date, history)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		// Restore the originating state so the user can answer again.
		c.questions = append([]string{question}, c.questions...)
		c.conversation = c.conversation[:len(c.conversation)-1]
		c.mode = AwaitingAnswer
		return nil, err
	}
	return c.applyLocked(result), nil
}

// applyLocked folds a successful planner result into the dialogue state.
func (c *Controller) applyLocked(result *planner.Result) *Status {
	if result.NeedsClarification {
		c.mode = AwaitingAnswer
		c.questions = append([]string{}, result.Questions...)
		return c.statusLocked()
	}

	c.mode = Ready
	c.questions = nil
	c.schedule = result.Schedule
	return c.statusLocked()
}

// CurrentQuestion returns the front of the question queue. Only one question
// of a batch is ever exposed at a time.
func (c *Controller) CurrentQuestion() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != AwaitingAnswer || len(c.questions) == 0 {
		return "", false
	}
	return c.questions[0], true
}

// Mode returns the current dialogue mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Schedule returns the resolved schedule once the controller is Ready.
func (c *Controller) Schedule() ([]schedule.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Ready {
		return nil, false
	}
	return c.schedule, true
}

// Conversation returns a copy of the accumulated question/answer pairs.
func (c *Controller) Conversation() []planner.QA {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]planner.QA, len(c.conversation))
	copy(out, c.conversation)
	return out
}

// Reset discards any open dialogue.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.mode = Idle
	c.dialogueID = ""
	c.originalPlan = ""
	c.currentDate = ""
	c.questions = nil
	c.conversation = nil
	c.schedule = nil
}

func (c *Controller) statusLocked() *Status {
	status := &Status{Mode: c.mode}
	if c.mode == AwaitingAnswer && len(c.questions) > 0 {
		status.Question = c.questions[0]
	}
	if c.mode == Ready {
		status.Schedule = c.schedule
	}
	return status
}
