package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dayflow/internal/schedule"
)

const scheduleSystemPrompt = `You are an expert daily planning assistant. You parse natural language into structured schedules and keep existing schedules consistent when they change.

Always respond with a single JSON object and nothing else. No markdown, no commentary.`

const summarySystemPrompt = `You are an expert productivity coach. Your goal is to provide a clear, encouraging, and actionable summary of the user's day.

Always respond with a single JSON object and nothing else.`

func buildGenerateSchedulePrompt(plan, currentDate string, history []QA) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are parsing a user's natural language plan into a structured list of tasks for today, %q.\n\n", currentDate)

	if len(history) > 0 {
		fmt.Fprintf(&b, "You are in a conversation to clarify the user's plan.\nThe user initially said: %q\n\nHere is the conversation so far:\n", plan)
		for _, qa := range history {
			fmt.Fprintf(&b, "You asked: %q\nUser answered: %q\n", qa.Question, qa.Answer)
		}
		b.WriteString("Now, re-evaluate the entire conversation and parse the complete plan.\n")
	} else {
		fmt.Fprintf(&b, "The user said: %q\n", plan)
	}

	b.WriteString(`
Parse the plan into a structured list of tasks:
1. Identify tasks, events, or appointments.
2. For each task, extract:
   - A concise "name".
   - A "duration_minutes" number (e.g., "45 minutes" -> 45, "1 hour" -> 60).
   - A "scheduled_time" in 24-hour HH:MM format (e.g., "2pm" -> "14:00").
3. If critical information is missing (e.g., "plan my day" is too vague), set "needs_clarification" to true and provide clarifying questions. Prefer to create a sensible structure first.
4. If not enough information is available for clarification, return an empty task list.

Return a JSON object with this exact structure:
{
  "needs_clarification": false,
  "clarifying_questions": [],
  "tasks": [
    {
      "name": "Task name",
      "duration_minutes": 45,
      "scheduled_time": "09:00",
      "notes": "",
      "type": "task"
    }
  ]
}
`)

	return b.String()
}

func buildAddTaskPrompt(existing []schedule.Event, newTask, currentTime string) string {
	var b strings.Builder

	b.WriteString("You are dynamically updating a schedule. Take the existing schedule and a new task, and intelligently insert the new task.\n\n")
	fmt.Fprintf(&b, "The current time is %s.\n\n", currentTime)
	fmt.Fprintf(&b, "The existing schedule is:\n%s\n\n", scheduleJSON(existing))
	fmt.Fprintf(&b, "The user wants to add the following new task: %q\n", newTask)

	b.WriteString(`
Follow these rules:
1. Analyze the new task: determine what it is, its estimated duration, and any timing hints. If no duration is given, estimate a reasonable one.
2. Find the insertion point based on the current time and any hints ("after my next meeting", "in 20 minutes"). With no hints, place it after the currently active or next upcoming task.
3. Insert the new task and adjust start times of subsequent tasks as needed. The final schedule must remain chronologically ordered.
   When shifting tasks, keep 5-15 minutes of buffer time between consecutive tasks for transitions.
4. If the request conflicts with the existing schedule and you cannot resolve it safely, do NOT apply a partial change: set "needs_clarification" to true and ask a question that proposes a concrete resolution.
5. Return the complete updated schedule, never just the new task.

Return a JSON object with this exact structure:
{
  "needs_clarification": false,
  "clarifying_questions": [],
  "schedule": [
    {"time": "09:00 AM", "task": "Task description", "duration": "45min"}
  ],
  "changes_summary": "One sentence describing what changed."
}
`)

	return b.String()
}

func buildAdjustDelayPrompt(existing []schedule.Event, delay, currentTime string) string {
	var b strings.Builder

	b.WriteString("You are dynamically updating a schedule. Take the existing schedule and a delay duration, and shift the schedule accordingly.\n\n")
	fmt.Fprintf(&b, "The current time is %s.\n\n", currentTime)
	fmt.Fprintf(&b, "The existing schedule is:\n%s\n\n", scheduleJSON(existing))
	fmt.Fprintf(&b, "The user is running late by: %q\n", delay)

	b.WriteString(`
Follow these rules:
1. Identify all tasks that have not yet started, based on the current time.
2. Shift each future task's start time forward by the delay. Do not change the times of past or currently active tasks.
3. Do not alter the duration of any task. Where the shift compresses the day, preserve 5-15 minutes of buffer time between consecutive tasks.
4. Return the complete updated schedule, including both the unchanged past tasks and the shifted future tasks, in chronological order.

Return a JSON object with this exact structure:
{
  "schedule": [
    {"time": "09:00 AM", "task": "Task description", "duration": "45min"}
  ],
  "changes_summary": "One sentence describing the shift."
}
`)

	return b.String()
}

func buildExtractTasksPrompt(transcript string) string {
	var b strings.Builder

	b.WriteString("You are parsing natural language into structured tasks in real-time. The user is still speaking, so the transcript may be incomplete.\n\n")
	fmt.Fprintf(&b, "Transcript so far: %q\n", transcript)

	b.WriteString(`
Extract tasks from the transcript:
1. Identify tasks, events, or appointments.
2. Extract any specific time (e.g., "2pm", "noon") or duration (e.g., "45 minutes", "2 hours").
3. If a task has a name but is missing a time or duration, its status is "needs_info". Otherwise it is "complete".
4. Do not invent details. If the user does not specify something, omit it.
5. It is okay to return an empty array if no tasks are clearly identified yet.

Return a JSON object with this exact structure:
{
  "tasks": [
    {"name": "Task name", "time": "2:00 PM", "duration": "45min", "status": "complete"}
  ]
}
`)

	return b.String()
}

func buildSuggestTasksPrompt(goal string) string {
	var b strings.Builder

	b.WriteString("You are helping a user break a goal down into actionable steps.\n\n")
	fmt.Fprintf(&b, "The user has set the following goal: %q\n", goal)

	b.WriteString(`
Suggest concrete steps toward the goal in three categories:
1. "suggested_tasks": one-off tasks that can be scheduled directly.
2. "suggested_flows": short sequences of related tasks that belong together.
3. "suggested_routines": recurring habits worth repeating daily or weekly.

Keep each suggestion to a single short phrase. A category may be empty.

Return a JSON object with this exact structure:
{
  "suggested_tasks": ["..."],
  "suggested_flows": ["..."],
  "suggested_routines": ["..."]
}
`)

	return b.String()
}

func buildSummarizeDayPrompt(activities string) string {
	var b strings.Builder

	b.WriteString("Analyze the following description of the day's activities, which includes completed tasks and the user's personal reflections:\n\n")
	fmt.Fprintf(&b, "---\n%s\n---\n", activities)

	b.WriteString(`
Generate a structured summary with three sections:
1. Key accomplishments: the most important tasks the user completed, phrased in an encouraging tone.
2. Learnings and insights: reflections the user mentioned. If none are explicitly stated, infer potential learnings from the activities.
3. Suggestions for tomorrow: concrete, actionable suggestions, such as follow-up tasks or ways to improve focus.

Return a JSON object with this exact structure:
{
  "accomplishments": ["..."],
  "learnings": ["..."],
  "suggestions": ["..."]
}
`)

	return b.String()
}

// scheduleJSON renders events as an indented JSON block for prompt embedding.
func scheduleJSON(events []schedule.Event) string {
	if events == nil {
		events = []schedule.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
