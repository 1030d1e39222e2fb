package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/dayflow/internal/history"
)

func TestBuildActivities(t *testing.T) {
	runs := []history.FocusRun{
		{Task: "Standup", ScheduledTime: "09:30 AM", DurationSeconds: 900, FocusedSeconds: 900, Status: history.RunCompleted},
		{Task: "Deep work", ScheduledTime: "10:00 AM", DurationSeconds: 5400, FocusedSeconds: 3600, Status: history.RunCompleted},
		{Task: "Gym", ScheduledTime: "06:00 PM", Status: history.RunSkipped},
	}

	activities := buildActivities(runs)

	assert.Contains(t, activities, `Completed "Standup" (scheduled 09:30 AM, focused 15:00 of 15:00).`)
	assert.Contains(t, activities, `focused 60:00 of 90:00`)
	assert.Contains(t, activities, `Skipped "Gym" (scheduled 06:00 PM).`)
}

func TestBuildActivitiesEmpty(t *testing.T) {
	assert.Empty(t, buildActivities(nil))
}
