// Package session implements the focus session state machine: walking a
// schedule one task at a time with a cooperative 1-second countdown,
// completion/skip accounting, and synchronous persistence of progress.
package session

import (
	"time"

	"github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
	"github.com/google/uuid"
)

// Phase is the session's lifecycle state.
type Phase string

const (
	NoSchedule  Phase = "no_schedule"
	TaskPending Phase = "task_pending"
	TaskRunning Phase = "task_running"
	TaskPaused  Phase = "task_paused"
	AllComplete Phase = "all_complete"
)

// Transition identifies what a state machine call did, so callers can
// distinguish a user-initiated completion from timer expiry.
type Transition string

const (
	TransitionNone         Transition = "none"
	TransitionTick         Transition = "tick"
	TransitionStarted      Transition = "started"
	TransitionPaused       Transition = "paused"
	TransitionResumed      Transition = "resumed"
	TransitionCompleted    Transition = "completed"
	TransitionSkipped      Transition = "skipped"
	TransitionAutoComplete Transition = "auto_complete"
	TransitionAllComplete  Transition = "all_complete"
)

// Clock abstracts the wall clock so the machine never reads time directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// State is the persisted session snapshot. RemainingSeconds may be stale
// after a restart; it resumes at its saved value.
type State struct {
	ID                  string           `json:"id"`
	Date                string           `json:"date,omitempty"`
	Phase               Phase            `json:"phase"`
	Schedule            []schedule.Event `json:"schedule"`
	CurrentTaskIndex    int              `json:"current_task_index"`
	CompletedTasksCount int              `json:"completed_tasks_count"`
	TotalFocusedSeconds int              `json:"total_focused_time"`
	RemainingSeconds    int              `json:"remaining_seconds"`
	InitialSeconds      int              `json:"initial_seconds"`
	TomorrowsPlan       string           `json:"tomorrows_plan,omitempty"`
}

// Machine drives one focus session. It is single-owner: all calls must come
// from one goroutine, matching the cooperative tick model.
type Machine struct {
	state  State
	store  Store
	clock  Clock
	logger *log.Logger
}

// NewMachine restores the previous session from the store, or starts empty
// when nothing usable is persisted.
func NewMachine(store Store, clock Clock, logger *log.Logger) (*Machine, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if state == nil || state.Phase == "" {
		state = &State{Phase: NoSchedule}
	}

	return &Machine{
		state:  *state,
		store:  store,
		clock:  clock,
		logger: logger,
	}, nil
}

// State returns a snapshot of the session.
func (m *Machine) State() State {
	s := m.state
	s.Schedule = append([]schedule.Event{}, m.state.Schedule...)
	return s
}

// CurrentTask returns the task the session is anchored to.
func (m *Machine) CurrentTask() (schedule.Event, bool) {
	if m.state.CurrentTaskIndex >= len(m.state.Schedule) {
		return schedule.Event{}, false
	}
	switch m.state.Phase {
	case TaskPending, TaskRunning, TaskPaused:
		return m.state.Schedule[m.state.CurrentTaskIndex], true
	}
	return schedule.Event{}, false
}

// Generate adopts a new schedule, unconditionally discarding any session in
// progress and resetting all counters.
func (m *Machine) Generate(events []schedule.Event) error {
	if len(events) == 0 {
		return errors.New(errors.ErrCodeScheduleEmpty, "cannot start a session with an empty schedule")
	}

	sorted := append([]schedule.Event{}, events...)
	schedule.Sort(sorted)

	m.state = State{
		ID:       uuid.New().String(),
		Date:     m.clock.Now().Format("2006-01-02"),
		Phase:    TaskPending,
		Schedule: sorted,
	}
	return m.save()
}

// Start begins the countdown for the pending task.
func (m *Machine) Start() (Transition, error) {
	if m.state.Phase != TaskPending {
		return TransitionNone, m.invalidTransition("start")
	}

	duration := m.state.Schedule[m.state.CurrentTaskIndex].DurationSeconds()
	m.state.InitialSeconds = duration
	m.state.RemainingSeconds = duration
	m.state.Phase = TaskRunning
	return TransitionStarted, m.save()
}

// Pause stops the countdown. No ticks accumulate while paused.
func (m *Machine) Pause() (Transition, error) {
	if m.state.Phase != TaskRunning {
		return TransitionNone, m.invalidTransition("pause")
	}
	m.state.Phase = TaskPaused
	return TransitionPaused, m.save()
}

// Resume restarts the countdown at the remaining value.
func (m *Machine) Resume() (Transition, error) {
	if m.state.Phase != TaskPaused {
		return TransitionNone, m.invalidTransition("resume")
	}
	m.state.Phase = TaskRunning
	return TransitionResumed, m.save()
}

// Tick advances the countdown by one second. Reaching zero auto-completes
// the task silently; the returned transition makes that observable.
func (m *Machine) Tick() (Transition, error) {
	if m.state.Phase != TaskRunning {
		return TransitionNone, nil
	}

	m.state.RemainingSeconds--
	if m.state.RemainingSeconds > 0 {
		return TransitionTick, nil
	}

	m.state.RemainingSeconds = 0
	return m.finishCurrent(TransitionAutoComplete)
}

// Complete finishes the current task by user action. Focused time counts
// only the seconds actually spent, not the nominal duration.
func (m *Machine) Complete() (Transition, error) {
	switch m.state.Phase {
	case TaskRunning, TaskPaused:
		return m.finishCurrent(TransitionCompleted)
	case TaskPending:
		// Completing before starting counts the task but no focused time.
		return m.finishCurrent(TransitionCompleted)
	}
	return TransitionNone, m.invalidTransition("complete")
}

// Skip advances past the current task without crediting completion or
// focused time.
func (m *Machine) Skip() (Transition, error) {
	switch m.state.Phase {
	case TaskPending, TaskRunning, TaskPaused:
	default:
		return TransitionNone, m.invalidTransition("skip")
	}

	m.logger.Info("task skipped",
		"index", m.state.CurrentTaskIndex,
		"task", m.state.Schedule[m.state.CurrentTaskIndex].Task,
	)
	return m.advance(TransitionSkipped)
}

// SetTomorrowsPlan stores the note carried into the next day.
func (m *Machine) SetTomorrowsPlan(plan string) error {
	m.state.TomorrowsPlan = plan
	return m.save()
}

// finishCurrent credits the current task and advances.
func (m *Machine) finishCurrent(via Transition) (Transition, error) {
	m.state.CompletedTasksCount++
	m.state.TotalFocusedSeconds += m.state.InitialSeconds - m.state.RemainingSeconds
	return m.advance(via)
}

// advance moves to the next task, or ends the session. Reaching the end
// force-sets the completed count to the schedule length, reconciling any
// skip discrepancy.
func (m *Machine) advance(via Transition) (Transition, error) {
	m.state.CurrentTaskIndex++
	m.state.InitialSeconds = 0
	m.state.RemainingSeconds = 0

	if m.state.CurrentTaskIndex >= len(m.state.Schedule) {
		m.state.Phase = AllComplete
		m.state.CompletedTasksCount = len(m.state.Schedule)
		if err := m.save(); err != nil {
			return TransitionNone, err
		}
		return TransitionAllComplete, nil
	}

	m.state.Phase = TaskPending
	return via, m.save()
}

func (m *Machine) save() error {
	return m.store.Save(&m.state)
}

func (m *Machine) invalidTransition(op string) error {
	return errors.New(errors.ErrCodeSessionBadTransition, "cannot "+op+" while "+string(m.state.Phase))
}
