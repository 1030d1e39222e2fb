// Package tui renders the focus session as an interactive terminal UI.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/dayflow/internal/history"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
	"github.com/felixgeelhaar/dayflow/internal/session"
)

// TickMsg drives the one-second countdown.
type TickMsg time.Time

// FocusModel walks the user through a schedule one timed task at a time.
// All timer semantics live in the session machine; the model only maps
// keys and ticks onto machine transitions and renders the result.
type FocusModel struct {
	machine  *session.Machine
	recorder func(history.FocusRun)
	progress progress.Model
	styles   Styles

	width    int
	height   int
	ready    bool
	quitting bool

	lastTransition session.Transition
}

// FocusOption configures the focus model.
type FocusOption func(*FocusModel)

// WithRunRecorder registers a callback invoked with every finished or
// skipped task, for persisting focus history.
func WithRunRecorder(rec func(history.FocusRun)) FocusOption {
	return func(m *FocusModel) {
		m.recorder = rec
	}
}

// NewFocusModel creates the focus TUI over an existing session machine.
func NewFocusModel(machine *session.Machine, opts ...FocusOption) FocusModel {
	m := FocusModel{
		machine:  machine,
		progress: progress.New(progress.WithDefaultGradient()),
		styles:   DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init implements tea.Model.
func (m FocusModel) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 8
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		m.ready = true
		return m, nil

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		if m.machine.State().Phase == session.TaskRunning {
			// Expiry surfaces as an auto-complete, which the recorder
			// treats like a manual completion.
			m.finishRun(history.RunCompleted, m.machine.Tick)
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m FocusModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "s", "enter":
		switch m.machine.State().Phase {
		case session.TaskPending:
			m.applyTransition(m.machine.Start())
		case session.TaskPaused:
			m.applyTransition(m.machine.Resume())
		}

	case " ":
		switch m.machine.State().Phase {
		case session.TaskRunning:
			m.applyTransition(m.machine.Pause())
		case session.TaskPaused:
			m.applyTransition(m.machine.Resume())
		}

	case "c":
		m.finishRun(history.RunCompleted, m.machine.Complete)

	case "k":
		m.finishRun(history.RunSkipped, m.machine.Skip)
	}

	return m, nil
}

// applyTransition records the outcome of a machine call. Invalid
// transitions from stray keys are dropped silently.
func (m *FocusModel) applyTransition(tr session.Transition, err error) {
	if err != nil {
		return
	}
	if tr != session.TransitionNone && tr != session.TransitionTick {
		m.lastTransition = tr
	}
}

// finishRun runs a transition that may finish the current task and hands
// the finished run to the recorder. The snapshot is taken before the call
// since the machine resets timer fields as it advances.
func (m *FocusModel) finishRun(status string, call func() (session.Transition, error)) {
	prev := m.machine.State()
	task, ok := m.machine.CurrentTask()

	tr, err := call()
	m.applyTransition(tr, err)
	if err != nil || !ok || m.recorder == nil {
		return
	}
	if tr == session.TransitionTick || tr == session.TransitionNone {
		return
	}

	// The machine credits focused time as it finishes the task, so the
	// delta is exact for manual completes and timer expiry alike.
	focused := m.machine.State().TotalFocusedSeconds - prev.TotalFocusedSeconds
	m.recorder(history.FocusRun{
		Date:            prev.Date,
		Task:            task.Task,
		ScheduledTime:   task.Time,
		DurationSeconds: task.DurationSeconds(),
		FocusedSeconds:  focused,
		Status:          status,
	})
}

// View implements tea.Model.
func (m FocusModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return m.renderFarewell()
	}

	state := m.machine.State()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("dayflow focus"))
	b.WriteString("\n")

	switch state.Phase {
	case session.NoSchedule:
		b.WriteString(m.styles.Muted.Render("No schedule yet. Run 'dayflow plan' first."))
		b.WriteString("\n")
	case session.AllComplete:
		b.WriteString(m.renderComplete(state))
	default:
		if notice := m.transitionNotice(); notice != "" {
			b.WriteString(notice)
			b.WriteString("\n")
		}
		b.WriteString(m.renderTimer(state))
		b.WriteString("\n")
		b.WriteString(m.renderSchedule(state))
	}

	b.WriteString(m.renderHelp(state.Phase))
	return b.String()
}

// transitionNotice tells the user how the previous task ended. A skip
// reads differently from the timer running out.
func (m FocusModel) transitionNotice() string {
	switch m.lastTransition {
	case session.TransitionSkipped:
		return m.styles.Muted.Render("Task skipped; no focus time credited.")
	case session.TransitionAutoComplete:
		return m.styles.Success.Render("Time's up! Task completed.")
	default:
		return ""
	}
}

func (m FocusModel) renderTimer(state session.State) string {
	task, ok := m.machine.CurrentTask()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Task %d of %d", state.CurrentTaskIndex+1, len(state.Schedule))))
	b.WriteString("\n")
	b.WriteString(m.styles.Current.Render(task.Task))
	b.WriteString("\n\n")

	switch state.Phase {
	case session.TaskPending:
		b.WriteString(m.styles.Timer.Render(schedule.FormatCountdown(task.DurationSeconds())))
		b.WriteString(m.styles.Muted.Render("  ready"))
	case session.TaskRunning, session.TaskPaused:
		b.WriteString(m.styles.Timer.Render(schedule.FormatCountdown(state.RemainingSeconds)))
		if state.Phase == session.TaskPaused {
			b.WriteString(m.styles.Muted.Render("  paused"))
		}
		b.WriteString("\n")
		b.WriteString(m.progress.ViewAs(m.elapsedFraction(state)))
	}
	b.WriteString("\n")

	return b.String()
}

func (m FocusModel) elapsedFraction(state session.State) float64 {
	if state.InitialSeconds == 0 {
		return 0
	}
	return float64(state.InitialSeconds-state.RemainingSeconds) / float64(state.InitialSeconds)
}

func (m FocusModel) renderSchedule(state session.State) string {
	var b strings.Builder
	for i, event := range state.Schedule {
		var line string
		switch {
		case i < state.CurrentTaskIndex:
			line = m.styles.Done.Render(fmt.Sprintf("  ✓ %s  %s", event.Time, event.Task))
		case i == state.CurrentTaskIndex:
			line = m.styles.Upcoming.Render(fmt.Sprintf("  ▶ %s  %s (%s)", event.Time, event.Task, event.Duration))
		default:
			line = m.styles.Upcoming.Render(fmt.Sprintf("    %s  %s (%s)", event.Time, event.Task, event.Duration))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m FocusModel) renderComplete(state session.State) string {
	var b strings.Builder
	b.WriteString(m.styles.Success.Render("All tasks complete!"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Tasks finished: %d\n", state.CompletedTasksCount))
	b.WriteString(fmt.Sprintf("  Focused time:   %s\n", schedule.FormatCountdown(state.TotalFocusedSeconds)))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Run 'dayflow summarize' for your day review."))
	b.WriteString("\n")
	return b.String()
}

func (m FocusModel) renderFarewell() string {
	state := m.machine.State()
	return fmt.Sprintf("Focused %s across %d tasks. See you tomorrow.\n",
		schedule.FormatCountdown(state.TotalFocusedSeconds), state.CompletedTasksCount)
}

func (m FocusModel) renderHelp(phase session.Phase) string {
	var keys []string
	switch phase {
	case session.TaskPending:
		keys = append(keys, "s start")
	case session.TaskRunning:
		keys = append(keys, "space pause", "c complete", "k skip")
	case session.TaskPaused:
		keys = append(keys, "space resume", "c complete", "k skip")
	}
	keys = append(keys, "q quit")

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, m.styles.Key.Render(strings.Fields(k)[0])+" "+m.styles.Muted.Render(strings.Fields(k)[1]))
	}
	return m.styles.Help.Render(strings.Join(parts, "  "))
}
