// Package schedule defines the day-schedule data model shared by the planner,
// the focus session state machine, and the HTTP surface.
//
// Events carry their time and duration as display strings ("09:00 AM",
// "45min") because that is the wire format the language model produces and
// the one clients render. Canonical integer forms are derived through the
// parse functions in this package; parsing is total and degrades to defaults
// rather than failing.
package schedule

// Event is a single timed entry in a day schedule.
type Event struct {
	// Time is the display-formatted start time, e.g. "09:00 AM".
	Time string `json:"time"`

	// Task is a short label for the activity.
	Task string `json:"task"`

	// Duration is the display-formatted duration, e.g. "45min" or "1hr".
	Duration string `json:"duration"`
}

// StartMinutes returns the event's start time as minutes since midnight.
func (e Event) StartMinutes() int {
	return ParseClockMinutes(e.Time)
}

// DurationSeconds returns the event's duration in seconds.
func (e Event) DurationSeconds() int {
	return ParseDurationSeconds(e.Duration)
}

// TaskType distinguishes where a persisted task came from.
type TaskType string

const (
	TaskTypeTask    TaskType = "task"
	TaskTypeFlow    TaskType = "flow_task"
	TaskTypeRoutine TaskType = "routine_task"
)

// TaskStatus tracks a task through a focus session.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusSkipped    TaskStatus = "skipped"
)

// Task is the richer, persisted variant of an event. scheduled_time is
// 24-hour "HH:MM"; date is "YYYY-MM-DD".
type Task struct {
	Name            string     `json:"name"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	ScheduledTime   string     `json:"scheduled_time,omitempty"`
	Date            string     `json:"date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Type            TaskType   `json:"type"`
	Completed       bool       `json:"completed"`
	Status          TaskStatus `json:"status"`
}

// Event converts a structured task into its display-string event form.
// Tasks without a scheduled time sort to the start of the day; tasks without
// a duration get the standard 25-minute block.
func (t Task) Event() Event {
	minutes := 0
	if t.ScheduledTime != "" {
		minutes = ParseClockMinutes(t.ScheduledTime)
	}

	duration := t.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationSeconds / 60
	}

	return Event{
		Time:     FormatClock(minutes),
		Task:     t.Name,
		Duration: FormatDurationMinutes(duration),
	}
}

// EventsFromTasks converts a task list into a chronologically sorted event
// list.
func EventsFromTasks(tasks []Task) []Event {
	events := make([]Event, 0, len(tasks))
	for _, t := range tasks {
		events = append(events, t.Event())
	}
	Sort(events)
	return events
}
