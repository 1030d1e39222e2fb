package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/planner"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
)

// Capability endpoints share a uniform contract: POST with a JSON body,
// JSON response on success, {"error": "..."} on failure. Input validation
// failures return 400, everything else 500.

type generateScheduleRequest struct {
	Plan                string       `json:"plan"`
	CurrentDate         string       `json:"currentDate,omitempty"`
	ConversationHistory []planner.QA `json:"conversationHistory,omitempty"`
}

type generateScheduleResponse struct {
	NeedsClarification  bool             `json:"needs_clarification"`
	ClarifyingQuestions []string         `json:"clarifying_questions,omitempty"`
	Schedule            []schedule.Event `json:"schedule"`
}

// addTaskRequest accepts newTask as either a free-form string or a
// structured task object. Strings go through the provider; objects are
// folded in locally.
type addTaskRequest struct {
	ExistingSchedule []schedule.Event `json:"existingSchedule"`
	NewTask          json.RawMessage  `json:"newTask"`
	CurrentTime      string           `json:"currentTime,omitempty"`
}

type modifyScheduleResponse struct {
	NeedsClarification  bool             `json:"needs_clarification"`
	ClarifyingQuestions []string         `json:"clarifying_questions,omitempty"`
	Schedule            []schedule.Event `json:"schedule"`
	ChangesSummary      string           `json:"changes_summary,omitempty"`
}

type adjustDelayRequest struct {
	ExistingSchedule []schedule.Event `json:"existingSchedule"`
	DelayDuration    string           `json:"delayDuration"`
	CurrentTime      string           `json:"currentTime,omitempty"`
}

type extractTasksRequest struct {
	Transcript string `json:"transcript"`
}

type extractTasksResponse struct {
	Tasks []planner.TaskCandidate `json:"tasks"`
}

type suggestTasksRequest struct {
	Goal string `json:"goal"`
}

type summarizeDayRequest struct {
	Activities string `json:"activities"`
}

type currentTimeResponse struct {
	Time    string `json:"time"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGenerateSchedule turns a natural-language plan into a schedule.
// POST /api/ai/generate-schedule
func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req generateScheduleRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	currentDate := req.CurrentDate
	if currentDate == "" {
		currentDate = s.clock.Now().Format("Monday, January 2, 2006")
	}

	result, err := s.planner.GenerateSchedule(r.Context(), req.Plan, currentDate, req.ConversationHistory)
	if err != nil {
		s.writeCapabilityError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, generateScheduleResponse{
		NeedsClarification:  result.NeedsClarification,
		ClarifyingQuestions: result.Questions,
		Schedule:            nonNilEvents(result.Schedule),
	})
}

// handleAddTask folds a described task into an existing schedule.
// POST /api/ai/add-task-to-schedule
func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	var request string
	if err := json.Unmarshal(req.NewTask, &request); err != nil {
		var task schedule.Task
		if err := json.Unmarshal(req.NewTask, &task); err != nil || task.Name == "" {
			s.writeError(w, http.StatusBadRequest, "newTask must be a string or a task object with a name")
			return
		}

		updated := s.planner.AddStructuredTask(req.ExistingSchedule, task)
		s.writeJSON(w, http.StatusOK, modifyScheduleResponse{
			Schedule:       updated,
			ChangesSummary: fmt.Sprintf("Added %q to the schedule.", task.Name),
		})
		return
	}

	currentTime := req.CurrentTime
	if currentTime == "" {
		currentTime = s.clock.Now().Format("3:04 PM")
	}

	result, err := s.planner.AddTask(r.Context(), req.ExistingSchedule, request, currentTime)
	if err != nil {
		s.writeCapabilityError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, modifyScheduleResponse{
		NeedsClarification:  result.NeedsClarification,
		ClarifyingQuestions: result.Questions,
		Schedule:            nonNilEvents(result.Schedule),
		ChangesSummary:      result.ChangesSummary,
	})
}

// handleAdjustForDelay pushes not-yet-started events back by a delay.
// POST /api/ai/adjust-schedule-for-delay
func (s *Server) handleAdjustForDelay(w http.ResponseWriter, r *http.Request) {
	var req adjustDelayRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	currentTime := req.CurrentTime
	if currentTime == "" {
		currentTime = s.clock.Now().Format("3:04 PM")
	}

	result, err := s.planner.AdjustForDelay(r.Context(), req.ExistingSchedule, req.DelayDuration, currentTime)
	if err != nil {
		s.writeCapabilityError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, modifyScheduleResponse{
		Schedule:       nonNilEvents(result.Schedule),
		ChangesSummary: result.ChangesSummary,
	})
}

// handleExtractTasks pulls task candidates out of a spoken transcript.
// POST /api/ai/extract-tasks-from-transcript
func (s *Server) handleExtractTasks(w http.ResponseWriter, r *http.Request) {
	var req extractTasksRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	tasks, err := s.planner.ExtractTasks(r.Context(), req.Transcript)
	if err != nil {
		s.writeCapabilityError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []planner.TaskCandidate{}
	}

	s.writeJSON(w, http.StatusOK, extractTasksResponse{Tasks: tasks})
}

// handleSuggestTasks breaks a goal into suggested tasks, flows, and routines.
// POST /api/ai/suggest-tasks-from-goal
func (s *Server) handleSuggestTasks(w http.ResponseWriter, r *http.Request) {
	var req suggestTasksRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	suggestions, err := s.planner.SuggestTasksFromGoal(r.Context(), req.Goal)
	if err != nil {
		s.writeCapabilityError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, suggestions)
}

// handleSummarizeDay produces the structured end-of-day review.
// POST /api/ai/summarize-day
func (s *Server) handleSummarizeDay(w http.ResponseWriter, r *http.Request) {
	var req summarizeDayRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	summary, err := s.planner.SummarizeDay(r.Context(), req.Activities)
	if err != nil {
		s.writeCapabilityError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// handleCurrentTime reports the server's wall clock.
// POST /api/ai/get-current-time
func (s *Server) handleCurrentTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := s.clock.Now()
	s.writeJSON(w, http.StatusOK, currentTimeResponse{
		Time:    now.Format("15:04:05"),
		Hours:   now.Hour(),
		Minutes: now.Minute(),
	})
}

// decodeRequest enforces the POST-with-JSON contract. It writes the error
// response itself and reports whether the handler should proceed.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeCapabilityError maps planner failures onto the HTTP contract:
// rejected input is the caller's fault, everything else is ours.
func (s *Server) writeCapabilityError(w http.ResponseWriter, r *http.Request, err error) {
	var dfErr *errors.DayflowError
	if stderrors.As(err, &dfErr) && strings.HasPrefix(string(dfErr.Code), "PLAN-") {
		s.writeError(w, http.StatusBadRequest, dfErr.Message)
		return
	}

	s.logger.ErrorContext(r.Context(), "capability request failed", "path", r.URL.Path, "error", err)
	s.writeError(w, http.StatusInternalServerError, "schedule request failed")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func nonNilEvents(events []schedule.Event) []schedule.Event {
	if events == nil {
		return []schedule.Event{}
	}
	return events
}
